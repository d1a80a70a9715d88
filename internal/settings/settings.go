package settings

import (
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	settingsDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/settings"
)

type Recurrence string

const (
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
	RecurrenceCustom   Recurrence = "CUSTOM"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceCustom:
		return true
	}
	return false
}

var (
	ErrPaymentScheduleNotFound = internal.NewNotFoundError("payment schedule not found", internal.ErrCodePaymentScheduleNotFound)
	ErrDeadlineSettingNotFound = internal.NewNotFoundError("deadline setting not found", internal.ErrCodeDeadlineSettingNotFound)
	ErrDuplicateScheduleName   = internal.NewConflictError("a payment schedule with this name already exists", internal.ErrCodeDuplicateScheduleName)
)

// PaymentSchedule is a named net-days term such as "Net 30".
type PaymentSchedule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DaysDue int    `json:"days_due"`
}

type DeadlineSetting struct {
	ID                 string     `json:"id"`
	Recurrence         Recurrence `json:"recurrence"`
	CustomIntervalDays *int       `json:"custom_interval_days,omitempty"`
	NextDeadline       *time.Time `json:"next_deadline,omitempty"`
}

// NextAfter returns the first deadline after t. It only computes; nothing is scheduled.
func (d DeadlineSetting) NextAfter(t time.Time) time.Time {
	switch d.Recurrence {
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceBiweekly:
		return t.AddDate(0, 0, 14)
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	case RecurrenceCustom:
		if d.CustomIntervalDays != nil {
			return t.AddDate(0, 0, *d.CustomIntervalDays)
		}
	}
	return t
}

func ScheduleToDataModel(s *PaymentSchedule) *settingsDatamodel.PaymentSchedule {
	return &settingsDatamodel.PaymentSchedule{ID: s.ID, Name: s.Name, DaysDue: s.DaysDue}
}

func ScheduleFromDataModel(row *settingsDatamodel.PaymentSchedule) *PaymentSchedule {
	return &PaymentSchedule{ID: row.ID, Name: row.Name, DaysDue: row.DaysDue}
}

func DeadlineToDataModel(d *DeadlineSetting) *settingsDatamodel.InvoiceDeadlineSetting {
	return &settingsDatamodel.InvoiceDeadlineSetting{
		ID:                 d.ID,
		Recurrence:         string(d.Recurrence),
		CustomIntervalDays: d.CustomIntervalDays,
	}
}

func DeadlineFromDataModel(row *settingsDatamodel.InvoiceDeadlineSetting) *DeadlineSetting {
	return &DeadlineSetting{
		ID:                 row.ID,
		Recurrence:         Recurrence(row.Recurrence),
		CustomIntervalDays: row.CustomIntervalDays,
	}
}
