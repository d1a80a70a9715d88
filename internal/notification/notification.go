package notification

import (
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	notificationDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/notification"
	"github.com/google/uuid"
)

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotification(userID, message string, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Read:      false,
		CreatedAt: now.UTC(),
	}
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(row *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Message:   row.Message,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
}
