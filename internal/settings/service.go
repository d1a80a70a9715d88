package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	settingsDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/settings"
	"github.com/google/uuid"
)

// RepositoryAPI persists settings rows. Update methods return the matching NotFound
// sentinel when no row has the given id.
type RepositoryAPI interface {
	CreatePaymentSchedule(ctx context.Context, s *settingsDatamodel.PaymentSchedule) error
	UpdatePaymentSchedule(ctx context.Context, s *settingsDatamodel.PaymentSchedule) error
	GetPaymentSchedule(ctx context.Context, id string) (*settingsDatamodel.PaymentSchedule, error)
	GetPaymentScheduleByName(ctx context.Context, name string) (*settingsDatamodel.PaymentSchedule, error)
	ListPaymentSchedules(ctx context.Context) ([]*settingsDatamodel.PaymentSchedule, error)

	CreateDeadlineSetting(ctx context.Context, d *settingsDatamodel.InvoiceDeadlineSetting) error
	UpdateDeadlineSetting(ctx context.Context, d *settingsDatamodel.InvoiceDeadlineSetting) error
	ListDeadlineSettings(ctx context.Context) ([]*settingsDatamodel.InvoiceDeadlineSetting, error)
}

type Service struct {
	repo   RepositoryAPI
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// UpsertPaymentSchedule creates a schedule when id is empty and updates it otherwise.
func (s *Service) UpsertPaymentSchedule(ctx context.Context, caller auth.Caller, id string, dto PaymentScheduleDTO) (*PaymentSchedule, error) {
	if err := auth.Authorize(auth.ActionManageSettings, caller, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	schedule := &PaymentSchedule{ID: id, Name: strings.TrimSpace(dto.Name), DaysDue: *dto.DaysDue}

	existing, err := s.repo.GetPaymentScheduleByName(ctx, schedule.Name)
	if err != nil && !errors.Is(err, ErrPaymentScheduleNotFound) {
		return nil, internal.NewInternalError("failed to check payment schedule name", err)
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDuplicateScheduleName
	}

	if id == "" {
		schedule.ID = uuid.NewString()
		err = s.repo.CreatePaymentSchedule(ctx, ScheduleToDataModel(schedule))
	} else {
		err = s.repo.UpdatePaymentSchedule(ctx, ScheduleToDataModel(schedule))
	}
	if err != nil {
		if errors.Is(err, ErrPaymentScheduleNotFound) {
			return nil, err
		}
		s.logger.Error("failed to save payment schedule", "error", err, "schedule_id", id)
		return nil, internal.NewInternalError("failed to save payment schedule", err)
	}

	s.logger.Info("payment schedule saved", "schedule_id", schedule.ID, "name", schedule.Name, "days_due", schedule.DaysDue, "by", caller.UserID)
	return schedule, nil
}

func (s *Service) UpsertDeadlineSetting(ctx context.Context, caller auth.Caller, id string, dto DeadlineSettingDTO) (*DeadlineSetting, error) {
	if err := auth.Authorize(auth.ActionManageSettings, caller, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	setting := &DeadlineSetting{ID: id, Recurrence: Recurrence(dto.Recurrence), CustomIntervalDays: dto.CustomIntervalDays}

	var err error
	if id == "" {
		setting.ID = uuid.NewString()
		err = s.repo.CreateDeadlineSetting(ctx, DeadlineToDataModel(setting))
	} else {
		err = s.repo.UpdateDeadlineSetting(ctx, DeadlineToDataModel(setting))
	}
	if err != nil {
		if errors.Is(err, ErrDeadlineSettingNotFound) {
			return nil, err
		}
		s.logger.Error("failed to save deadline setting", "error", err, "setting_id", id)
		return nil, internal.NewInternalError("failed to save deadline setting", err)
	}

	next := setting.NextAfter(s.now().UTC())
	setting.NextDeadline = &next
	return setting, nil
}

// ListPaymentSchedules is open to any signed-in user so the invoice form can offer them.
func (s *Service) ListPaymentSchedules(ctx context.Context, caller auth.Caller) ([]*PaymentSchedule, error) {
	if err := auth.Authorize(auth.ActionViewSettings, caller, auth.Resource{}); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPaymentSchedules(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list payment schedules", err)
	}
	out := make([]*PaymentSchedule, len(rows))
	for i, row := range rows {
		out[i] = ScheduleFromDataModel(row)
	}
	return out, nil
}

// GetPaymentSchedule is the lookup used by the invoice engine; it performs no policy check.
func (s *Service) GetPaymentSchedule(ctx context.Context, id string) (*PaymentSchedule, error) {
	row, err := s.repo.GetPaymentSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPaymentScheduleNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load payment schedule", err)
	}
	return ScheduleFromDataModel(row), nil
}

func (s *Service) ListDeadlineSettings(ctx context.Context, caller auth.Caller) ([]*DeadlineSetting, error) {
	if err := auth.Authorize(auth.ActionManageSettings, caller, auth.Resource{}); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDeadlineSettings(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list deadline settings", err)
	}

	now := s.now().UTC()
	out := make([]*DeadlineSetting, len(rows))
	for i, row := range rows {
		d := DeadlineFromDataModel(row)
		next := d.NextAfter(now)
		d.NextDeadline = &next
		out[i] = d
	}
	return out, nil
}
