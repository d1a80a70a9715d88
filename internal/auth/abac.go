package auth

import (
	"github.com/frahmantamala/invoice-management/internal"
)

type Action string

const (
	ActionCreateInvoice       Action = "invoice:create"
	ActionViewInvoice         Action = "invoice:view"
	ActionEditInvoice         Action = "invoice:edit"
	ActionChangeInvoiceStatus Action = "invoice:change_status"
	ActionListAllInvoices     Action = "invoice:list_all"
	ActionExportInvoices      Action = "invoice:export"
	ActionManageSettings      Action = "settings:manage"
	ActionViewSettings        Action = "settings:view"
	ActionCreateNotification  Action = "notification:create"
	ActionMarkNotification    Action = "notification:mark_read"
	ActionListUsers           Action = "user:list"
	ActionManageCategories    Action = "category:manage"
)

// Resource describes the object an action targets. OwnerID is empty for
// collection-level actions.
type Resource struct {
	OwnerID string
}

// rule grants an action to a set of roles, and optionally to the resource owner.
type rule struct {
	roles   []Role
	anyone  bool
	toOwner bool
}

// Policy is an attribute-based decision table keyed by action.
type Policy struct {
	rules map[Action]rule
}

func NewPolicy() *Policy {
	return &Policy{rules: map[Action]rule{
		ActionCreateInvoice:       {anyone: true},
		ActionViewInvoice:         {roles: []Role{RoleAdmin, RolePayrollManager}, toOwner: true},
		ActionEditInvoice:         {roles: []Role{RoleAdmin}, toOwner: true},
		ActionChangeInvoiceStatus: {roles: []Role{RoleAdmin, RolePayrollManager}},
		ActionListAllInvoices:     {roles: []Role{RoleAdmin, RolePayrollManager}},
		ActionExportInvoices:      {roles: []Role{RoleAdmin}},
		ActionManageSettings:      {roles: []Role{RoleAdmin}},
		ActionViewSettings:        {anyone: true},
		ActionCreateNotification:  {roles: []Role{RoleAdmin}, toOwner: true},
		ActionMarkNotification:    {roles: []Role{RoleAdmin}, toOwner: true},
		ActionListUsers:           {roles: []Role{RoleAdmin}},
		ActionManageCategories:    {roles: []Role{RoleAdmin}},
	}}
}

// Authorize is the single decision point for every guarded operation.
// It returns nil, ErrUnauthenticated or ErrForbidden.
func (p *Policy) Authorize(action Action, caller Caller, res Resource) error {
	if !caller.IsAuthenticated() {
		return internal.ErrUnauthenticated
	}

	r, ok := p.rules[action]
	if !ok {
		return internal.ErrForbidden
	}
	if r.anyone || caller.HasRole(r.roles...) {
		return nil
	}
	if r.toOwner && res.OwnerID != "" && res.OwnerID == caller.UserID {
		return nil
	}
	return internal.ErrForbidden
}

var defaultPolicy = NewPolicy()

// Authorize checks action against the process-wide policy.
func Authorize(action Action, caller Caller, res Resource) error {
	return defaultPolicy.Authorize(action, caller, res)
}
