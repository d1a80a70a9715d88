package postgres

import (
	"context"
	"errors"
	"fmt"

	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/invoice-management/internal/user"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const employeeDirectory = `
SELECT u.id, u.email, u.name, u.role, COUNT(n.id) AS unread_count
FROM users u
LEFT JOIN notifications n ON n.user_id = u.id AND n.read = false
GROUP BY u.id, u.email, u.name, u.role
ORDER BY COALESCE(u.name, u.email) ASC, u.id ASC`

// UserRepository reads single rows through GORM and the directory through sqlx.
type UserRepository struct {
	db   *gorm.DB
	sqlx *sqlx.DB
}

func NewUserRepository(db *gorm.DB, sqlxDB *sqlx.DB) user.RepositoryAPI {
	return &UserRepository{db: db, sqlx: sqlxDB}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) ListEmployees(ctx context.Context) ([]user.Employee, error) {
	employees := []user.Employee{}
	if err := r.sqlx.SelectContext(ctx, &employees, employeeDirectory); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}
