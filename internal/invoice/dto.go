package invoice

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type ItemDTO struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	CategoryID  *string         `json:"category_id,omitempty"`
}

// InvoiceDTO is the request body for both creating and updating an invoice.
type InvoiceDTO struct {
	InvoiceDate       string    `json:"invoice_date"`
	PaymentScheduleID string    `json:"payment_schedule_id"`
	Items             []ItemDTO `json:"items"`
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() (Status, error) {
	st, ok := ParseStatus(strings.ToUpper(strings.TrimSpace(d.Status)))
	if !ok {
		return "", internal.NewValidationFieldError("status",
			fmt.Sprintf("status must be one of %s, %s, %s", StatusDraft, StatusSent, StatusApproved), internal.ErrCodeInvalidStatus)
	}
	return st, nil
}

// Validate checks the body and returns the parsed invoice date and items.
func (d InvoiceDTO) Validate() (time.Time, []Item, error) {
	v := validation.NewValidator()
	v.Field("payment_schedule_id", d.PaymentScheduleID).Required()

	for i, it := range d.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		v.Field(prefix+".description", it.Description).Required().MaxLength(500)
		v.Field(prefix+".hours", it.Hours).Positive(internal.ErrCodeInvalidHours).
			MaxScale(AmountScale, internal.ErrCodeInvalidHours).MaxDecimal(MaxItemHours, internal.ErrCodeInvalidHours)
		v.Field(prefix+".rate", it.Rate).Positive(internal.ErrCodeInvalidRate).
			MaxScale(AmountScale, internal.ErrCodeInvalidRate).MaxDecimal(MaxItemRate, internal.ErrCodeInvalidRate)
	}

	var details []internal.ValidationError
	if err := v.Validate(); err != nil {
		details = append(details, validationDetails(err)...)
	}

	invoiceDate, dateErr := validation.ParseDate("invoice_date", d.InvoiceDate)
	if dateErr != nil {
		details = append(details, validationDetails(dateErr)...)
	}

	if len(d.Items) == 0 {
		details = append(details, internal.ValidationError{
			Field:   "items",
			Message: "at least one item is required",
			Code:    string(internal.ErrCodeEmptyItems),
		})
	}

	if len(details) == 0 {
		details = append(details, totalsDetails(d.Items)...)
	}

	if len(details) > 0 {
		return time.Time{}, nil, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: details})
	}

	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = Item{
			ID:          strings.TrimSpace(it.ID),
			Description: strings.TrimSpace(it.Description),
			Hours:       it.Hours,
			Rate:        it.Rate,
			CategoryID:  normalizeOptional(it.CategoryID),
		}
	}
	return invoiceDate, items, nil
}

// totalsDetails rejects item sets whose totals would not fit the invoice columns.
func totalsDetails(in []ItemDTO) []internal.ValidationError {
	items := make([]Item, len(in))
	for i, it := range in {
		items[i] = Item{Hours: it.Hours, Rate: it.Rate}
	}
	hours, cost := ComputeTotals(items)

	var details []internal.ValidationError
	if hours.GreaterThan(MaxTotalHours) {
		details = append(details, internal.ValidationError{
			Field:   "items",
			Message: "total hours must not exceed " + MaxTotalHours.String(),
			Code:    string(internal.ErrCodeInvalidHours),
		})
	}
	if cost.GreaterThan(MaxTotalCost) {
		details = append(details, internal.ValidationError{
			Field:   "items",
			Message: "total cost must not exceed " + MaxTotalCost.String(),
			Code:    string(internal.ErrCodeInvalidRate),
		})
	}
	return details
}

func validationDetails(err *internal.AppError) []internal.ValidationError {
	if ve, ok := err.Details.(internal.ValidationErrors); ok {
		return ve.Errors
	}
	return []internal.ValidationError{{Message: err.Message, Code: string(err.Code)}}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ParseListQuery builds a ListFilter from query parameters. Unknown sort fields are rejected.
func ParseListQuery(q url.Values) (ListFilter, error) {
	f := ListFilter{Limit: DefaultLimit}

	if s := q.Get("status"); s != "" {
		st, ok := ParseStatus(strings.ToUpper(s))
		if !ok {
			return ListFilter{}, internal.NewValidationFieldError("status", "unknown status "+s, internal.ErrCodeInvalidStatus)
		}
		f.Status = st
	}
	f.UserID = firstNonEmpty(q.Get("user_id"), q.Get("userId"))

	dates := []struct {
		keys []string
		dst  **time.Time
	}{
		{[]string{"invoice_date_from", "invoiceDateFrom"}, &f.InvoiceDateFrom},
		{[]string{"invoice_date_to", "invoiceDateTo"}, &f.InvoiceDateTo},
		{[]string{"due_date_from", "dueDateFrom"}, &f.DueDateFrom},
		{[]string{"due_date_to", "dueDateTo"}, &f.DueDateTo},
	}
	for _, d := range dates {
		raw := firstNonEmpty(q.Get(d.keys[0]), q.Get(d.keys[1]))
		if raw == "" {
			continue
		}
		t, err := validation.ParseDate(d.keys[0], raw)
		if err != nil {
			return ListFilter{}, err
		}
		*d.dst = &t
	}

	sort, err := ParseSortField(firstNonEmpty(q.Get("sort"), q.Get("sortBy"), q.Get("sort_by")))
	if err != nil {
		return ListFilter{}, err
	}
	f.Sort = sort

	order, err := ParseSortOrder(firstNonEmpty(q.Get("order"), q.Get("sortOrder"), q.Get("sort_order")))
	if err != nil {
		return ListFilter{}, err
	}
	f.Order = order

	if l := q.Get("limit"); l != "" {
		n, convErr := strconv.Atoi(l)
		if convErr != nil || n < 1 {
			return ListFilter{}, internal.NewValidationFieldError("limit", "limit must be a positive integer", internal.ErrCodeValidationFailed)
		}
		f.Limit = n
	}
	if o := q.Get("offset"); o != "" {
		n, convErr := strconv.Atoi(o)
		if convErr != nil || n < 0 {
			return ListFilter{}, internal.NewValidationFieldError("offset", "offset must be zero or greater", internal.ErrCodeValidationFailed)
		}
		f.Offset = n
	}

	return f.Normalize(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type ListResponse struct {
	Invoices []View `json:"invoices"`
	Total    int64  `json:"total"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}
