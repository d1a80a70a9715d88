package postgres

import (
	"context"
	"errors"
	"fmt"

	invoiceDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-management/internal/invoice"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository implements invoice.RepositoryAPI using GORM transactions.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) invoice.RepositoryAPI {
	return &InvoiceRepository{db: db}
}

// Create inserts the header and all items atomically.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	row := invoice.ToDataModel(inv)
	items := row.Items
	row.Items = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert invoice items: %w", err)
			}
		}
		return nil
	})
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	var row invoiceDatamodel.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.id ASC") }).
		Preload("User").
		Preload("PaymentSchedule").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice.FromDataModel(&row), nil
}

// Update rewrites the header guarded by status = DRAFT and applies the item plan.
// Any failure rolls back the whole write.
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice, changes invoice.ItemChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&invoiceDatamodel.Invoice{}).
			Where("id = ? AND status = ?", inv.ID, string(invoice.StatusDraft)).
			Updates(map[string]interface{}{
				"payment_schedule_id": inv.PaymentScheduleID,
				"invoice_date":        inv.InvoiceDate,
				"due_date":            inv.DueDate,
				"total_hours":         inv.TotalHours,
				"total_cost":          inv.TotalCost,
			})
		if res.Error != nil {
			return fmt.Errorf("update invoice header: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invoice.ErrInvoiceLocked
		}

		if len(changes.DeleteIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id IN ?", inv.ID, changes.DeleteIDs).
				Delete(&invoiceDatamodel.InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("delete invoice items: %w", err)
			}
		}

		for _, it := range changes.Update {
			res := tx.Model(&invoiceDatamodel.InvoiceItem{}).
				Where("id = ? AND invoice_id = ?", it.ID, inv.ID).
				Updates(map[string]interface{}{
					"description": it.Description,
					"hours":       it.Hours,
					"rate":        it.Rate,
					"category_id": it.CategoryID,
				})
			if res.Error != nil {
				return fmt.Errorf("update invoice item %s: %w", it.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update invoice item %s: item no longer exists", it.ID)
			}
		}

		if len(changes.Insert) > 0 {
			rows := invoice.ItemsToDataModel(changes.Insert)
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert invoice items: %w", err)
			}
		}
		return nil
	})
}

// UpdateStatus is a compare-and-set on the current status.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, inv *invoice.Invoice, from invoice.Status) error {
	updates := map[string]interface{}{"status": string(inv.Status)}
	if inv.SubmittedDate != nil {
		updates["submitted_date"] = *inv.SubmittedDate
	}
	if inv.ApprovedDate != nil {
		updates["approved_date"] = *inv.ApprovedDate
	}

	res := r.db.WithContext(ctx).Model(&invoiceDatamodel.Invoice{}).
		Where("id = ? AND status = ?", inv.ID, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invoice.ErrStatusChanged
	}
	return nil
}
