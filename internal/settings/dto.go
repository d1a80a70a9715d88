package settings

import (
	"strings"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/core/common/validation"
)

// maxDays bounds both days_due and custom deadline intervals.
const maxDays = 365

type PaymentScheduleDTO struct {
	Name    string `json:"name"`
	DaysDue *int   `json:"days_due"`
}

func (d PaymentScheduleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", strings.TrimSpace(d.Name)).Required().MaxLength(100)
	v.Field("days_due", d.DaysDue).Required().MinInt(0, internal.ErrCodeValidationFailed).MaxInt(maxDays, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DeadlineSettingDTO struct {
	Recurrence         string `json:"recurrence"`
	CustomIntervalDays *int   `json:"custom_interval_days,omitempty"`
}

func (d DeadlineSettingDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("recurrence", d.Recurrence).Required().OneOf(internal.ErrCodeValidationFailed,
		string(RecurrenceWeekly), string(RecurrenceBiweekly), string(RecurrenceMonthly), string(RecurrenceCustom))

	switch Recurrence(d.Recurrence) {
	case RecurrenceCustom:
		v.Field("custom_interval_days", d.CustomIntervalDays).Required().MinInt(1, internal.ErrCodeValidationFailed).MaxInt(maxDays, internal.ErrCodeValidationFailed)
	default:
		if d.CustomIntervalDays != nil {
			v.Field("custom_interval_days", d.CustomIntervalDays).Custom(func(interface{}) *internal.AppError {
				return internal.NewValidationFieldError("custom_interval_days",
					"custom_interval_days is only allowed with CUSTOM recurrence", internal.ErrCodeValidationFailed)
			})
		}
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
