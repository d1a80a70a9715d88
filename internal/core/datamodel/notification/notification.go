package notification

import "time"

type Notification struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;index"`
	Message   string    `gorm:"column:message;not null"`
	Read      bool      `gorm:"column:read;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Notification) TableName() string {
	return "notifications"
}
