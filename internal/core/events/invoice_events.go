package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeInvoiceSubmitted = "invoice.submitted"
	EventTypeInvoiceApproved  = "invoice.approved"
)

// InvoiceStatusChangedEvent is published after a status transition commits.
type InvoiceStatusChangedEvent struct {
	BaseEvent
	InvoiceID   string    `json:"invoice_id"`
	OwnerID     string    `json:"owner_id"`
	ChangedBy   string    `json:"changed_by"`
	InvoiceDate time.Time `json:"invoice_date"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
}

func NewInvoiceStatusChangedEvent(eventType, invoiceID, ownerID, changedBy string, invoiceDate time.Time, from, to string) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"invoice_id":   invoiceID,
				"owner_id":     ownerID,
				"changed_by":   changedBy,
				"invoice_date": invoiceDate.Format(time.DateOnly),
				"from_status":  from,
				"to_status":    to,
			},
		},
		InvoiceID:   invoiceID,
		OwnerID:     ownerID,
		ChangedBy:   changedBy,
		InvoiceDate: invoiceDate,
		FromStatus:  from,
		ToStatus:    to,
	}
}
