package category

import (
	"github.com/frahmantamala/invoice-management/internal"
	categoryDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/category"
	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = internal.NewNotFoundError("category not found", internal.ErrCodeInvalidCategory)
	ErrDuplicateCategoryName = internal.NewConflictError("a category with this name already exists", internal.ErrCodeDuplicateCategoryName)
)

// Category tags invoice line items. Names are unique.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewCategory(name string) *Category {
	return &Category{ID: uuid.NewString(), Name: name}
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:   c.ID,
		Name: c.Name,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:   c.ID,
		Name: c.Name,
	}
}
