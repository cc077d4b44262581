package models

// Category nests one level deep in practice. ParentID is a soft reference:
// deleting a parent leaves its children pointing at a missing row.
type Category struct {
	Base
	Name      string  `gorm:"size:150;not null"`
	Image     string  `gorm:"size:500"`
	ParentID  *string `gorm:"size:36;index"`
	SortOrder int     `gorm:"not null;default:0;index"`
}
