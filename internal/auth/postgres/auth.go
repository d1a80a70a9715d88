package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/invoice-management/internal/auth"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         auth.Role(row.Role),
	}, nil
}

func (r *Repository) GetCallerByID(ctx context.Context, userID string) (*auth.Caller, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "email", "role").Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Caller{
		UserID: row.ID,
		Email:  row.Email,
		Role:   auth.Role(row.Role),
	}, nil
}
