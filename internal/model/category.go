package model

import "time"

// Category groups tasks by area (work, personal, urgent, etc.).
// Names are unique and matched case-sensitively.
type Category struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"uniqueIndex;not null"`
	UsageFrequency int    `gorm:"default:0"`
	CreatedAt      time.Time
	Tasks          []Task `gorm:"foreignKey:CategoryID"`
}
