package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a JSON-valued key/value row for site-wide configuration.
type Setting struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"` // Primary key.
	Key       string         `gorm:"type:text;not null;uniqueIndex"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"`
}
