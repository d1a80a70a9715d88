package settings

type PaymentSchedule struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	Name    string `gorm:"column:name;uniqueIndex;not null"`
	DaysDue int    `gorm:"column:days_due;not null"`
}

func (PaymentSchedule) TableName() string {
	return "payment_schedules"
}

type InvoiceDeadlineSetting struct {
	ID                 string `gorm:"primaryKey;type:uuid"`
	Recurrence         string `gorm:"column:recurrence;not null"`
	CustomIntervalDays *int   `gorm:"column:custom_interval_days"`
}

func (InvoiceDeadlineSetting) TableName() string {
	return "invoice_deadline_settings"
}
