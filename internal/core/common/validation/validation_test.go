package validation_test

import (
	"testing"
	"time"

	errors "github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("name", "Net-15").Required().MaxLength(100)
		v.Field("days_due", 15).MinInt(0, errors.ErrCodeValidationFailed)
		v.Field("hours", decimal.NewFromInt(8)).Positive(errors.ErrCodeInvalidHours)

		Expect(v.Validate()).To(BeNil())
	})

	It("collects every failing field into the details", func() {
		v := validation.NewValidator()
		v.Field("name", "  ").Required()
		v.Field("days_due", -1).MinInt(0, errors.ErrCodeValidationFailed)
		v.Field("rate", decimal.Zero).Positive(errors.ErrCodeInvalidRate)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Type).To(Equal(errors.ErrorTypeValidation))

		details, ok := err.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(3))
		Expect(details.Errors[0].Field).To(Equal("name"))
		Expect(details.Errors[1].Field).To(Equal("days_due"))
		Expect(details.Errors[2].Code).To(Equal(string(errors.ErrCodeInvalidRate)))
	})

	It("limits decimal places and magnitude", func() {
		v := validation.NewValidator()
		v.Field("hours", decimal.RequireFromString("1.500")).MaxScale(2, errors.ErrCodeInvalidHours)
		v.Field("rate", decimal.RequireFromString("99.99")).MaxDecimal(decimal.NewFromInt(100), errors.ErrCodeInvalidRate)
		Expect(v.Validate()).To(BeNil())

		v = validation.NewValidator()
		v.Field("hours", decimal.RequireFromString("0.004")).MaxScale(2, errors.ErrCodeInvalidHours)
		v.Field("rate", decimal.RequireFromString("100.01")).MaxDecimal(decimal.NewFromInt(100), errors.ErrCodeInvalidRate)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		details := err.Details.(errors.ValidationErrors)
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[0].Code).To(Equal(string(errors.ErrCodeInvalidHours)))
		Expect(details.Errors[1].Code).To(Equal(string(errors.ErrCodeInvalidRate)))
	})

	It("rejects values outside a OneOf set", func() {
		v := validation.NewValidator()
		v.Field("recurrence", "DAILY").OneOf(errors.ErrCodeValidationFailed, "WEEKLY", "MONTHLY")

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.GetDetailedMessage()).To(ContainSubstring("WEEKLY, MONTHLY"))
	})

	It("treats a nil pointer as missing", func() {
		var interval *int
		v := validation.NewValidator()
		v.Field("custom_interval_days", interval).Required()

		Expect(v.Validate()).NotTo(BeNil())
	})
})

var _ = Describe("ParseDate", func() {
	It("parses a calendar date as UTC midnight", func() {
		d, err := validation.ParseDate("invoice_date", "2024-01-01")
		Expect(err).To(BeNil())
		Expect(d).To(Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	It("truncates an RFC 3339 timestamp to its day", func() {
		d, err := validation.ParseDate("invoice_date", "2024-03-05T17:45:00Z")
		Expect(err).To(BeNil())
		Expect(d).To(Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	})

	It("rejects empty and malformed input", func() {
		_, err := validation.ParseDate("invoice_date", "")
		Expect(err).NotTo(BeNil())

		_, err = validation.ParseDate("invoice_date", "01/02/2024")
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("YYYY-MM-DD"))
	})
})
