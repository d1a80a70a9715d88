package category

type Category struct {
	ID   string `gorm:"primaryKey;type:uuid"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}
