package models

type BannerType string

const (
	BannerHero   BannerType = "hero"
	BannerPromo  BannerType = "promo"
	BannerBottom BannerType = "bottom"
)

func (t BannerType) Valid() bool {
	switch t {
	case BannerHero, BannerPromo, BannerBottom:
		return true
	}
	return false
}

type Banner struct {
	Base
	Type        BannerType `gorm:"size:20;not null;index"`
	Image       string     `gorm:"size:500;not null"`
	Title       string     `gorm:"size:255"`
	Description string     `gorm:"type:text"`
	ButtonText  string     `gorm:"size:100"`
	ButtonLink  string     `gorm:"size:500"`
	SortOrder   int        `gorm:"not null;default:0;index"`
	IsActive    bool       `gorm:"not null"`
}
