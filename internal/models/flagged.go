package models

import "time"

// FlaggedFedkey is one delinquent federation member in one audit run.
type FlaggedFedkey struct {
	ID         uint   `gorm:"primaryKey"`
	AuditRunID uint   `gorm:"index"`
	Fedkey     string `gorm:"size:128;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
