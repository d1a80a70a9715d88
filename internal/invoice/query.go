package invoice

import (
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortField is the closed set of columns a list may be ordered by.
type SortField string

const (
	SortByInvoiceDate   SortField = "invoice_date"
	SortByDueDate       SortField = "due_date"
	SortByStatus        SortField = "status"
	SortByTotalHours    SortField = "total_hours"
	SortByTotalCost     SortField = "total_cost"
	SortBySubmittedDate SortField = "submitted_date"
	SortByApprovedDate  SortField = "approved_date"
	SortByEmployee      SortField = "employee"
)

var sortAliases = map[string]SortField{
	"invoice_date":   SortByInvoiceDate,
	"invoiceDate":    SortByInvoiceDate,
	"due_date":       SortByDueDate,
	"dueDate":        SortByDueDate,
	"status":         SortByStatus,
	"total_hours":    SortByTotalHours,
	"totalHours":     SortByTotalHours,
	"total_cost":     SortByTotalCost,
	"totalCost":      SortByTotalCost,
	"submitted_date": SortBySubmittedDate,
	"submittedDate":  SortBySubmittedDate,
	"approved_date":  SortByApprovedDate,
	"approvedDate":   SortByApprovedDate,
	"employee":       SortByEmployee,
}

// ParseSortField maps a client-supplied name onto the allow-list. Empty means the default.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByInvoiceDate, nil
	}
	f, ok := sortAliases[s]
	if !ok {
		return "", internal.NewValidationFieldError("sort", "unsupported sort field "+s, internal.ErrCodeInvalidSortField)
	}
	return f, nil
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "":
		return SortDesc, nil
	case "asc", "ASC":
		return SortAsc, nil
	case "desc", "DESC":
		return SortDesc, nil
	}
	return "", internal.NewValidationFieldError("order", "order must be asc or desc", internal.ErrCodeInvalidSortField)
}

type ListFilter struct {
	UserID          string
	Status          Status
	InvoiceDateFrom *time.Time
	InvoiceDateTo   *time.Time
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	Sort            SortField
	Order           SortOrder
	Limit           int
	Offset          int
}

// Normalize fills defaults and clamps the page size. A zero limit stays zero only
// for unpaginated reads such as exports, which set it after normalizing.
func (f ListFilter) Normalize() ListFilter {
	if f.Sort == "" {
		f.Sort = SortByInvoiceDate
	}
	if f.Order == "" {
		f.Order = SortDesc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// View is one row of the invoice list, joined with its owner and schedule.
type View struct {
	ID                  string          `json:"id" db:"id"`
	UserID              string          `json:"user_id" db:"user_id"`
	EmployeeName        *string         `json:"employee_name,omitempty" db:"employee_name"`
	EmployeeEmail       string          `json:"employee_email" db:"employee_email"`
	PaymentScheduleID   string          `json:"payment_schedule_id" db:"payment_schedule_id"`
	PaymentScheduleName string          `json:"payment_schedule_name" db:"payment_schedule_name"`
	InvoiceDate         time.Time       `json:"invoice_date" db:"invoice_date"`
	DueDate             time.Time       `json:"due_date" db:"due_date"`
	Status              Status          `json:"status" db:"status"`
	TotalHours          decimal.Decimal `json:"total_hours" db:"total_hours"`
	TotalCost           decimal.Decimal `json:"total_cost" db:"total_cost"`
	SubmittedDate       *time.Time      `json:"submitted_date,omitempty" db:"submitted_date"`
	ApprovedDate        *time.Time      `json:"approved_date,omitempty" db:"approved_date"`
	Countdown           string          `json:"countdown,omitempty" db:"-"`
}

func (v View) EmployeeDisplayName() string {
	return Owner{Email: v.EmployeeEmail, Name: v.EmployeeName}.DisplayName()
}

type Summary struct {
	Counts        map[Status]int64 `json:"counts"`
	Total         int64            `json:"total"`
	NextDueDate   *time.Time       `json:"next_due_date,omitempty"`
	NextCountdown string           `json:"next_countdown,omitempty"`
}
