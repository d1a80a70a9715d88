package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/invoice-management/internal/core/events"
)

type Notifier interface {
	Notify(ctx context.Context, userID, message string) (*Notification, error)
}

// EventHandler turns invoice status changes into notifications for the invoice owner.
type EventHandler struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewEventHandler(notifier Notifier, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		logger:   logger,
	}
}

func (h *EventHandler) HandleInvoiceStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.InvoiceStatusChangedEvent)
	if !ok {
		h.logger.Error("invalid event type for invoice status handler", "event_type", event.EventType())
		return fmt.Errorf("expected InvoiceStatusChangedEvent, got %T", event)
	}

	message := statusMessage(event.EventType(), changed.InvoiceDate)
	if message == "" {
		return nil
	}

	if _, err := h.notifier.Notify(ctx, changed.OwnerID, message); err != nil {
		return fmt.Errorf("notify owner of invoice %s: %w", changed.InvoiceID, err)
	}

	h.logger.Info("owner notified of invoice status change",
		"invoice_id", changed.InvoiceID,
		"owner_id", changed.OwnerID,
		"to_status", changed.ToStatus,
		"event_id", changed.EventID())
	return nil
}

func statusMessage(eventType string, invoiceDate time.Time) string {
	date := invoiceDate.UTC().Format(time.DateOnly)
	switch eventType {
	case events.EventTypeInvoiceSubmitted:
		return fmt.Sprintf("Your invoice dated %s was submitted for approval.", date)
	case events.EventTypeInvoiceApproved:
		return fmt.Sprintf("Your invoice dated %s was approved.", date)
	}
	return ""
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeInvoiceSubmitted, h.HandleInvoiceStatusChanged)
	eventBus.Subscribe(events.EventTypeInvoiceApproved, h.HandleInvoiceStatusChanged)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeInvoiceSubmitted, events.EventTypeInvoiceApproved})
}
