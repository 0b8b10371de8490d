// Package models defines the database models for the optional audit trail.
package models

import "time"

// AuditRun records one completed monitor run. The trail is write-only for the
// monitor: runs never read prior rows, every run is computed fresh from chain
// state.
type AuditRun struct {
	ID             uint      `gorm:"primaryKey"`
	RanAt          time.Time `gorm:"index"`
	ChainHeight    uint64    `gorm:"index"`
	BestProposalID uint32
	Lookback       uint64
	FlaggedCount   int
	Report         string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
