package models

// Upload records a stored file. Name is the generated on-disk name; the
// client supplied OriginalName is display metadata only.
type Upload struct {
	Base
	Name         string `gorm:"size:100;uniqueIndex;not null"`
	OriginalName string `gorm:"size:255"`
	Size         int64  `gorm:"not null;default:0"`
	ContentType  string `gorm:"size:100"`
}
