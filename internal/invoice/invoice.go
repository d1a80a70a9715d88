package invoice

import (
	"fmt"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	invoiceDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusApproved Status = "APPROVED"
)

// transitions lists the allowed next states. APPROVED is terminal.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusApproved},
	StatusApproved: {},
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := transitions[st]
	return st, ok
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Item struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	CategoryID  *string         `json:"category_id,omitempty"`
}

func (i Item) Cost() decimal.Decimal {
	return i.Hours.Mul(i.Rate)
}

// Owner is the hydrated user an invoice belongs to.
type Owner struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

// DisplayName falls back to the email, then to "Unknown".
func (o Owner) DisplayName() string {
	if o.Name != nil && *o.Name != "" {
		return *o.Name
	}
	if o.Email != "" {
		return o.Email
	}
	return "Unknown"
}

type Schedule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DaysDue int    `json:"days_due"`
}

type Invoice struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	PaymentScheduleID string          `json:"payment_schedule_id"`
	InvoiceDate       time.Time       `json:"invoice_date"`
	DueDate           time.Time       `json:"due_date"`
	Status            Status          `json:"status"`
	TotalHours        decimal.Decimal `json:"total_hours"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	SubmittedDate     *time.Time      `json:"submitted_date,omitempty"`
	ApprovedDate      *time.Time      `json:"approved_date,omitempty"`
	Items             []Item          `json:"items"`

	Owner           *Owner    `json:"owner,omitempty"`
	PaymentSchedule *Schedule `json:"payment_schedule,omitempty"`
}

// DueDateFor adds daysDue calendar days to the invoice date.
func DueDateFor(invoiceDate time.Time, daysDue int) time.Time {
	return invoiceDate.AddDate(0, 0, daysDue)
}

// Storage limits of the invoice columns. Item values carry two decimal places,
// so an item cost has at most four and total_cost keeps all four.
const AmountScale int32 = 2

var (
	MaxItemHours  = decimal.RequireFromString("99999999.99")
	MaxItemRate   = decimal.RequireFromString("9999999999.99")
	MaxTotalHours = decimal.RequireFromString("9999999999.99")
	MaxTotalCost  = decimal.RequireFromString("99999999999999.9999")
)

func ComputeTotals(items []Item) (hours, cost decimal.Decimal) {
	hours, cost = decimal.Zero, decimal.Zero
	for _, it := range items {
		hours = hours.Add(it.Hours)
		cost = cost.Add(it.Cost())
	}
	return hours, cost
}

// NewInvoice builds a DRAFT invoice owned by ownerID with derived fields filled in.
func NewInvoice(ownerID string, schedule Schedule, invoiceDate time.Time, items []Item) *Invoice {
	inv := &Invoice{
		ID:                uuid.NewString(),
		UserID:            ownerID,
		PaymentScheduleID: schedule.ID,
		InvoiceDate:       invoiceDate,
		Status:            StatusDraft,
		PaymentSchedule:   &schedule,
	}
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].InvoiceID = inv.ID
	}
	inv.Items = items
	inv.Recalculate(schedule.DaysDue)
	return inv
}

// Recalculate refreshes the due date and totals from the current items.
func (inv *Invoice) Recalculate(daysDue int) {
	inv.DueDate = DueDateFor(inv.InvoiceDate, daysDue)
	inv.TotalHours, inv.TotalCost = ComputeTotals(inv.Items)
}

func (inv *Invoice) IsLocked() bool {
	return inv.Status != StatusDraft
}

// TransitionTo moves the invoice to the next status and stamps the matching date.
func (inv *Invoice) TransitionTo(to Status, now time.Time) error {
	if !inv.Status.CanTransitionTo(to) {
		return internal.NewInvalidTransitionError(string(inv.Status), string(to))
	}
	switch to {
	case StatusSent:
		inv.SubmittedDate = &now
	case StatusApproved:
		inv.ApprovedDate = &now
	}
	inv.Status = to
	return nil
}

// DaysUntilDue counts whole calendar days from now's date to the due date; negative when overdue.
func (inv *Invoice) DaysUntilDue(now time.Time) int {
	return DaysBetween(now, inv.DueDate)
}

// Countdown renders the due-date reminder shown on a user's dashboard. Only drafts have one.
func (inv *Invoice) Countdown(now time.Time) string {
	if inv.Status != StatusDraft {
		return ""
	}
	return CountdownText(inv.DaysUntilDue(now))
}

func CountdownText(days int) string {
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due in 1 day"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case days == -1:
		return "overdue by 1 day"
	default:
		return fmt.Sprintf("overdue by %d days", -days)
	}
}

func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// ItemChanges is the write plan produced by reconciling an item set.
type ItemChanges struct {
	Update    []Item
	Insert    []Item
	DeleteIDs []string
}

// ReconcileItems diffs incoming against existing. Items with a known id are updated,
// items without an id are inserted, and existing items missing from incoming are deleted.
// The returned slice is the resulting item set with ids assigned.
func ReconcileItems(invoiceID string, existing, incoming []Item) (ItemChanges, []Item, error) {
	var changes ItemChanges

	known := make(map[string]bool, len(existing))
	for _, it := range existing {
		known[it.ID] = true
	}

	seen := make(map[string]bool, len(incoming))
	result := make([]Item, 0, len(incoming))
	for i, it := range incoming {
		it.InvoiceID = invoiceID
		if it.ID == "" {
			it.ID = uuid.NewString()
			changes.Insert = append(changes.Insert, it)
			result = append(result, it)
			continue
		}
		field := fmt.Sprintf("items[%d].id", i)
		if !known[it.ID] {
			return ItemChanges{}, nil, internal.NewValidationFieldError(field,
				fmt.Sprintf("item %s does not belong to this invoice", it.ID), internal.ErrCodeValidationFailed)
		}
		if seen[it.ID] {
			return ItemChanges{}, nil, internal.NewValidationFieldError(field,
				fmt.Sprintf("item %s appears more than once", it.ID), internal.ErrCodeValidationFailed)
		}
		seen[it.ID] = true
		changes.Update = append(changes.Update, it)
		result = append(result, it)
	}

	for _, it := range existing {
		if !seen[it.ID] {
			changes.DeleteIDs = append(changes.DeleteIDs, it.ID)
		}
	}

	return changes, result, nil
}

func ToDataModel(inv *Invoice) *invoiceDatamodel.Invoice {
	row := &invoiceDatamodel.Invoice{
		ID:                inv.ID,
		UserID:            inv.UserID,
		PaymentScheduleID: inv.PaymentScheduleID,
		InvoiceDate:       inv.InvoiceDate,
		DueDate:           inv.DueDate,
		Status:            string(inv.Status),
		TotalHours:        inv.TotalHours,
		TotalCost:         inv.TotalCost,
		SubmittedDate:     inv.SubmittedDate,
		ApprovedDate:      inv.ApprovedDate,
	}
	row.Items = ItemsToDataModel(inv.Items)
	return row
}

func ItemsToDataModel(items []Item) []invoiceDatamodel.InvoiceItem {
	rows := make([]invoiceDatamodel.InvoiceItem, len(items))
	for i, it := range items {
		rows[i] = invoiceDatamodel.InvoiceItem{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Description: it.Description,
			Hours:       it.Hours,
			Rate:        it.Rate,
			CategoryID:  it.CategoryID,
		}
	}
	return rows
}

func FromDataModel(row *invoiceDatamodel.Invoice) *Invoice {
	inv := &Invoice{
		ID:                row.ID,
		UserID:            row.UserID,
		PaymentScheduleID: row.PaymentScheduleID,
		InvoiceDate:       row.InvoiceDate.UTC(),
		DueDate:           row.DueDate.UTC(),
		Status:            Status(row.Status),
		TotalHours:        row.TotalHours,
		TotalCost:         row.TotalCost,
		SubmittedDate:     row.SubmittedDate,
		ApprovedDate:      row.ApprovedDate,
		Items:             make([]Item, len(row.Items)),
	}
	for i, it := range row.Items {
		inv.Items[i] = Item{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Description: it.Description,
			Hours:       it.Hours,
			Rate:        it.Rate,
			CategoryID:  it.CategoryID,
		}
	}
	if row.User.ID != "" {
		inv.Owner = &Owner{ID: row.User.ID, Email: row.User.Email, Name: row.User.Name}
	}
	if row.PaymentSchedule.ID != "" {
		inv.PaymentSchedule = &Schedule{ID: row.PaymentSchedule.ID, Name: row.PaymentSchedule.Name, DaysDue: row.PaymentSchedule.DaysDue}
	}
	return inv
}
