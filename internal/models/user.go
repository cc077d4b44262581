package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

type User struct {
	Base
	Username     string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;default:admin"`
}
