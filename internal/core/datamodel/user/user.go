package user

type User struct {
	ID           string  `gorm:"primaryKey;type:uuid"`
	Email        string  `gorm:"column:email;uniqueIndex;not null"`
	Name         *string `gorm:"column:name"`
	PasswordHash string  `gorm:"column:password_hash;not null"`
	Role         string  `gorm:"column:role;not null"`
}

func (User) TableName() string {
	return "users"
}
