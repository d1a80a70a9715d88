package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/core/events"
	"github.com/frahmantamala/invoice-management/internal/settings"
)

var (
	ErrInvoiceNotFound = internal.NewNotFoundError("invoice not found", internal.ErrCodeInvoiceNotFound)
	ErrInvoiceLocked   = internal.NewForbiddenError("invoice is locked: only draft invoices can be edited", internal.ErrCodeInvoiceLocked)

	// ErrStatusChanged is returned by UpdateStatus when the row no longer has the expected status.
	ErrStatusChanged = errors.New("invoice status changed concurrently")
)

// RepositoryAPI is the transactional write side. Multi-row writes are atomic.
type RepositoryAPI interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	// Update rewrites the header only while the row is still DRAFT and applies changes
	// in the same transaction. It returns ErrInvoiceLocked when the header no longer matches.
	Update(ctx context.Context, inv *Invoice, changes ItemChanges) error
	UpdateStatus(ctx context.Context, inv *Invoice, from Status) error
}

// QueryAPI is the read model used for lists, exports and dashboards.
type QueryAPI interface {
	List(ctx context.Context, f ListFilter) ([]View, int64, error)
	StatusCounts(ctx context.Context, userID string) (map[Status]int64, error)
	NextDraftDue(ctx context.Context, userID string, from time.Time) (*time.Time, error)
}

type ScheduleLookup interface {
	GetPaymentSchedule(ctx context.Context, id string) (*settings.PaymentSchedule, error)
}

type CategoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	queries    QueryAPI
	schedules  ScheduleLookup
	categories CategoryChecker
	publisher  events.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, queries QueryAPI, schedules ScheduleLookup, categories CategoryChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		queries:    queries,
		schedules:  schedules,
		categories: categories,
		publisher:  publisher,
		now:        time.Now,
		logger:     logger,
	}
}

// CreateInvoice stores a new DRAFT invoice owned by the caller.
func (s *Service) CreateInvoice(ctx context.Context, caller auth.Caller, dto InvoiceDTO) (*Invoice, error) {
	if err := auth.Authorize(auth.ActionCreateInvoice, caller, auth.Resource{OwnerID: caller.UserID}); err != nil {
		return nil, err
	}

	invoiceDate, items, err := dto.Validate()
	if err != nil {
		s.logger.Warn("invoice validation failed", "error", err, "user_id", caller.UserID)
		return nil, err
	}

	schedule, err := s.schedules.GetPaymentSchedule(ctx, dto.PaymentScheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, items); err != nil {
		return nil, err
	}

	inv := NewInvoice(caller.UserID, toSchedule(schedule), invoiceDate, items)
	if err := s.repo.Create(ctx, inv); err != nil {
		s.logger.Error("failed to create invoice", "error", err, "user_id", caller.UserID)
		return nil, internal.NewTransactionFailedError("failed to create invoice", err)
	}

	s.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"user_id", caller.UserID,
		"items", len(inv.Items),
		"total_cost", inv.TotalCost.String())

	return inv, nil
}

// UpdateInvoice replaces the header and reconciles the items of a DRAFT invoice.
func (s *Service) UpdateInvoice(ctx context.Context, caller auth.Caller, id string, dto InvoiceDTO) (*Invoice, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(auth.ActionEditInvoice, caller, auth.Resource{OwnerID: inv.UserID}); err != nil {
		s.logger.Warn("invoice edit denied", "invoice_id", id, "user_id", caller.UserID, "owner_id", inv.UserID)
		return nil, err
	}
	if inv.IsLocked() {
		return nil, ErrInvoiceLocked
	}

	invoiceDate, items, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	schedule, err := s.schedules.GetPaymentSchedule(ctx, dto.PaymentScheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, items); err != nil {
		return nil, err
	}

	changes, reconciled, err := ReconcileItems(inv.ID, inv.Items, items)
	if err != nil {
		return nil, err
	}

	inv.InvoiceDate = invoiceDate
	inv.PaymentScheduleID = schedule.ID
	ps := toSchedule(schedule)
	inv.PaymentSchedule = &ps
	inv.Items = reconciled
	inv.Recalculate(schedule.DaysDue)

	if err := s.repo.Update(ctx, inv, changes); err != nil {
		if errors.Is(err, ErrInvoiceLocked) {
			return nil, err
		}
		s.logger.Error("failed to update invoice", "error", err, "invoice_id", id)
		return nil, internal.NewTransactionFailedError("failed to update invoice", err)
	}

	s.logger.Info("invoice updated",
		"invoice_id", inv.ID,
		"updated_items", len(changes.Update),
		"inserted_items", len(changes.Insert),
		"deleted_items", len(changes.DeleteIDs))

	return inv, nil
}

// UpdateInvoiceStatus moves an invoice along DRAFT -> SENT -> APPROVED.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, caller auth.Caller, id string, dto UpdateStatusDTO) (*Invoice, error) {
	if err := auth.Authorize(auth.ActionChangeInvoiceStatus, caller, auth.Resource{}); err != nil {
		return nil, err
	}

	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	from := inv.Status
	if err := inv.TransitionTo(to, s.now().UTC()); err != nil {
		s.logger.Warn("rejected status transition", "invoice_id", id, "from", from, "to", to)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, inv, from); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, internal.NewInvalidTransitionError(string(from), string(to))
		}
		s.logger.Error("failed to update invoice status", "error", err, "invoice_id", id)
		return nil, internal.NewTransactionFailedError("failed to update invoice status", err)
	}

	s.logger.Info("invoice status changed", "invoice_id", id, "from", from, "to", to, "by", caller.UserID)
	s.publishStatusChange(ctx, caller, inv, from)

	return inv, nil
}

// GetInvoice returns the hydrated invoice with owner, schedule and items.
func (s *Service) GetInvoice(ctx context.Context, caller auth.Caller, id string) (*Invoice, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}
	inv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(auth.ActionViewInvoice, caller, auth.Resource{OwnerID: inv.UserID}); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices scopes plain users to their own invoices; reviewers see everything.
func (s *Service) ListInvoices(ctx context.Context, caller auth.Caller, f ListFilter) (*ListResponse, error) {
	f, err := s.scope(caller, f)
	if err != nil {
		return nil, err
	}
	f = f.Normalize()

	views, total, err := s.queries.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list invoices", "error", err)
		return nil, internal.NewInternalError("failed to list invoices", err)
	}

	now := s.now()
	for i := range views {
		if views[i].Status == StatusDraft {
			views[i].Countdown = CountdownText(DaysBetween(now, views[i].DueDate))
		}
	}

	return &ListResponse{Invoices: views, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// ExportCSV renders every invoice matching f, ignoring pagination.
func (s *Service) ExportCSV(ctx context.Context, caller auth.Caller, f ListFilter) ([]byte, error) {
	if err := auth.Authorize(auth.ActionExportInvoices, caller, auth.Resource{}); err != nil {
		return nil, err
	}

	f = f.Normalize()
	f.Limit, f.Offset = 0, 0

	views, _, err := s.queries.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to load invoices for export", "error", err)
		return nil, internal.NewInternalError("failed to export invoices", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, views); err != nil {
		return nil, internal.NewInternalError("failed to export invoices", err)
	}

	s.logger.Info("invoices exported", "rows", len(views), "by", caller.UserID)
	return buf.Bytes(), nil
}

// Summary reports the caller's invoice counts per status and the nearest draft due date.
func (s *Service) Summary(ctx context.Context, caller auth.Caller) (*Summary, error) {
	if !caller.IsAuthenticated() {
		return nil, internal.ErrUnauthenticated
	}

	counts, err := s.queries.StatusCounts(ctx, caller.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to summarise invoices", err)
	}

	summary := &Summary{Counts: map[Status]int64{StatusDraft: 0, StatusSent: 0, StatusApproved: 0}}
	for st, n := range counts {
		summary.Counts[st] = n
		summary.Total += n
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next, err := s.queries.NextDraftDue(ctx, caller.UserID, today)
	if err != nil {
		return nil, internal.NewInternalError("failed to summarise invoices", err)
	}
	if next != nil {
		summary.NextDueDate = next
		summary.NextCountdown = CountdownText(DaysBetween(now, *next))
	}

	return summary, nil
}

func (s *Service) load(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, err
		}
		s.logger.Error("failed to load invoice", "error", err, "invoice_id", id)
		return nil, internal.NewInternalError("failed to load invoice", err)
	}
	return inv, nil
}

func (s *Service) scope(caller auth.Caller, f ListFilter) (ListFilter, error) {
	if !caller.IsAuthenticated() {
		return f, internal.ErrUnauthenticated
	}
	if auth.Authorize(auth.ActionListAllInvoices, caller, auth.Resource{}) == nil {
		return f, nil
	}
	if f.UserID != "" && f.UserID != caller.UserID {
		return f, internal.ErrForbidden
	}
	f.UserID = caller.UserID
	return f, nil
}

func (s *Service) checkCategories(ctx context.Context, items []Item) error {
	checked := map[string]bool{}
	for i, it := range items {
		if it.CategoryID == nil || checked[*it.CategoryID] {
			continue
		}
		ok, err := s.categories.Exists(ctx, *it.CategoryID)
		if err != nil {
			return internal.NewInternalError("failed to check category", err)
		}
		if !ok {
			return internal.NewValidationFieldError(fmt.Sprintf("items[%d].category_id", i),
				"unknown category "+*it.CategoryID, internal.ErrCodeInvalidCategory)
		}
		checked[*it.CategoryID] = true
	}
	return nil
}

func (s *Service) publishStatusChange(ctx context.Context, caller auth.Caller, inv *Invoice, from Status) {
	var eventType string
	switch inv.Status {
	case StatusSent:
		eventType = events.EventTypeInvoiceSubmitted
	case StatusApproved:
		eventType = events.EventTypeInvoiceApproved
	default:
		return
	}

	event := events.NewInvoiceStatusChangedEvent(eventType, inv.ID, inv.UserID, caller.UserID, inv.InvoiceDate, string(from), string(inv.Status))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish invoice event", "error", err, "invoice_id", inv.ID, "event_type", eventType)
	}
}

func toSchedule(ps *settings.PaymentSchedule) Schedule {
	return Schedule{ID: ps.ID, Name: ps.Name, DaysDue: ps.DaysDue}
}
