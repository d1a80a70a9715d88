package user

import (
	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
)

var ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
}

// DisplayName falls back to the email when the user never set a name.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Employee is a directory row: a user plus their unread notification count.
type Employee struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        *string   `json:"name,omitempty" db:"name"`
	Role        auth.Role `json:"role" db:"role"`
	UnreadCount int64     `json:"unread_count" db:"unread_count"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         auth.Role(u.Role),
	}
}
