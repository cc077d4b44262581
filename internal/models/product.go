package models

// Product.BrandID and Product.CategoryID are soft references, no foreign
// keys are declared for them.
type Product struct {
	Base
	Name            string  `gorm:"size:255;not null;index"`
	Description     string  `gorm:"type:text"`
	ShortSpecs      string  `gorm:"type:text"`
	Price           float64 `gorm:"not null;default:0"`
	Image           string  `gorm:"size:500"`
	BrandID         string  `gorm:"size:36;index"`
	CategoryID      string  `gorm:"size:36;index"`
	IsBestseller    bool    `gorm:"not null;default:false;index"`
	DiscountPercent int     `gorm:"not null;default:0"`
}
