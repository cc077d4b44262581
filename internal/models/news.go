package models

import "time"

type News struct {
	Base
	Title   string    `gorm:"size:255;not null"`
	Content string    `gorm:"type:text;not null"`
	Image   string    `gorm:"size:500"`
	Date    time.Time `gorm:"not null;index"`
}

func (News) TableName() string { return "news" }
