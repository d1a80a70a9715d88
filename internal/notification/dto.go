package notification

import (
	"github.com/frahmantamala/invoice-management/internal/core/common/validation"
)

type CreateNotificationDTO struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (d CreateNotificationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	v.Field("message", d.Message).Required().MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int64           `json:"unread_count"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}

type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}
