package invoice

import (
	"time"

	settingsDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/settings"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID                string          `gorm:"primaryKey;type:uuid"`
	UserID            string          `gorm:"column:user_id;type:uuid;not null;index"`
	PaymentScheduleID string          `gorm:"column:payment_schedule_id;type:uuid;not null"`
	InvoiceDate       time.Time       `gorm:"column:invoice_date;not null"`
	DueDate           time.Time       `gorm:"column:due_date;not null"`
	Status            string          `gorm:"column:status;not null;index"`
	TotalHours        decimal.Decimal `gorm:"column:total_hours;type:numeric(12,2);not null"`
	TotalCost         decimal.Decimal `gorm:"column:total_cost;type:numeric(18,4);not null"`
	SubmittedDate     *time.Time      `gorm:"column:submitted_date"`
	ApprovedDate      *time.Time      `gorm:"column:approved_date"`

	User            userDatamodel.User                `gorm:"foreignKey:UserID"`
	PaymentSchedule settingsDatamodel.PaymentSchedule `gorm:"foreignKey:PaymentScheduleID"`
	Items           []InvoiceItem                     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	ID          string          `gorm:"primaryKey;type:uuid"`
	InvoiceID   string          `gorm:"column:invoice_id;type:uuid;not null;index"`
	Description string          `gorm:"column:description;not null"`
	Hours       decimal.Decimal `gorm:"column:hours;type:numeric(10,2);not null"`
	Rate        decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null"`
	CategoryID  *string         `gorm:"column:category_id;type:uuid"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
