package models

type Brand struct {
	Base
	Name      string `gorm:"size:150;not null"`
	Image     string `gorm:"size:500"`
	SortOrder int    `gorm:"not null;default:0;index"`
}
