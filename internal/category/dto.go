package category

import (
	"strings"

	"github.com/frahmantamala/invoice-management/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name string `json:"name"`
}

func (d CreateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", strings.TrimSpace(d.Name)).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
