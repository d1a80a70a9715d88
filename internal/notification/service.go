package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	notificationDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/notification"
)

type RepositoryAPI interface {
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	GetByID(ctx context.Context, id string) (*notificationDatamodel.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// Create stores a notification for dto.UserID. Non-admins may only notify themselves.
func (s *Service) Create(ctx context.Context, caller auth.Caller, dto CreateNotificationDTO) (*Notification, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := auth.Authorize(auth.ActionCreateNotification, caller, auth.Resource{OwnerID: dto.UserID}); err != nil {
		return nil, err
	}
	return s.Notify(ctx, dto.UserID, dto.Message)
}

// Notify is the system path used by event subscribers; it skips the policy.
func (s *Service) Notify(ctx context.Context, userID, message string) (*Notification, error) {
	n := NewNotification(userID, strings.TrimSpace(message), s.now())
	if err := s.repo.Create(ctx, ToDataModel(n)); err != nil {
		s.logger.Error("failed to create notification", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to create notification", err)
	}
	s.logger.Info("notification created", "notification_id", n.ID, "user_id", userID)
	return n, nil
}

// MarkAsRead persists read=true. Marking an already read notification is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, caller auth.Caller, id string) (*Notification, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load notification", err)
	}

	if err := auth.Authorize(auth.ActionMarkNotification, caller, auth.Resource{OwnerID: row.UserID}); err != nil {
		return nil, err
	}

	n := FromDataModel(row)
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkAsRead(ctx, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to mark notification as read", err)
	}
	n.Read = true
	return n, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, caller auth.Caller) (int64, error) {
	if !caller.IsAuthenticated() {
		return 0, internal.ErrUnauthenticated
	}
	updated, err := s.repo.MarkAllAsRead(ctx, caller.UserID)
	if err != nil {
		return 0, internal.NewInternalError("failed to mark notifications as read", err)
	}
	s.logger.Info("notifications marked as read", "user_id", caller.UserID, "updated", updated)
	return updated, nil
}

// List returns the caller's own notifications, newest first.
func (s *Service) List(ctx context.Context, caller auth.Caller, unreadOnly bool, limit, offset int) (*ListResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	rows, err := s.repo.ListByUser(ctx, caller.UserID, unreadOnly, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, caller.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count notifications", err)
	}

	out := make([]*Notification, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return &ListResponse{Notifications: out, UnreadCount: unread, Limit: limit, Offset: offset}, nil
}
