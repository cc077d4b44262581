package models

// ServiceIcons is the closed set of icon names the storefront knows how to draw.
var ServiceIcons = []string{
	"wrench",
	"truck",
	"shield",
	"clock",
	"headset",
	"settings",
	"tag",
	"award",
}

type Service struct {
	Base
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:50;not null"`
	SortOrder   int    `gorm:"not null;default:0;index"`
}
