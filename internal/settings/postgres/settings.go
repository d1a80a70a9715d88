package postgres

import (
	"context"
	"errors"

	settingsDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/settings"
	"github.com/frahmantamala/invoice-management/internal/settings"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) CreatePaymentSchedule(ctx context.Context, s *settingsDatamodel.PaymentSchedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SettingsRepository) UpdatePaymentSchedule(ctx context.Context, s *settingsDatamodel.PaymentSchedule) error {
	res := r.db.WithContext(ctx).Model(&settingsDatamodel.PaymentSchedule{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":     s.Name,
			"days_due": s.DaysDue,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return settings.ErrPaymentScheduleNotFound
	}
	return nil
}

func (r *SettingsRepository) GetPaymentSchedule(ctx context.Context, id string) (*settingsDatamodel.PaymentSchedule, error) {
	var s settingsDatamodel.PaymentSchedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, settings.ErrPaymentScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) GetPaymentScheduleByName(ctx context.Context, name string) (*settingsDatamodel.PaymentSchedule, error) {
	var s settingsDatamodel.PaymentSchedule
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, settings.ErrPaymentScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) ListPaymentSchedules(ctx context.Context) ([]*settingsDatamodel.PaymentSchedule, error) {
	var rows []*settingsDatamodel.PaymentSchedule
	err := r.db.WithContext(ctx).Order("days_due ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) CreateDeadlineSetting(ctx context.Context, d *settingsDatamodel.InvoiceDeadlineSetting) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *SettingsRepository) UpdateDeadlineSetting(ctx context.Context, d *settingsDatamodel.InvoiceDeadlineSetting) error {
	res := r.db.WithContext(ctx).Model(&settingsDatamodel.InvoiceDeadlineSetting{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"recurrence":           d.Recurrence,
			"custom_interval_days": d.CustomIntervalDays,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return settings.ErrDeadlineSettingNotFound
	}
	return nil
}

func (r *SettingsRepository) ListDeadlineSettings(ctx context.Context) ([]*settingsDatamodel.InvoiceDeadlineSetting, error) {
	var rows []*settingsDatamodel.InvoiceDeadlineSetting
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}
