// Package db provides database connection and migration functionality.
package db

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"fedvote-monitor/internal/config"
	"fedvote-monitor/internal/models"
	"fedvote-monitor/internal/monitor"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a database connection using the provided configuration.
// Returns (nil, nil) when no database is configured; the audit trail is
// optional.
func Open(cfg config.Config) (*gorm.DB, error) {
	// Configure GORM logger (Silent to avoid cluttering output; only errors will be logged)
	newLogger := logger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	if cfg.DBDialect == "" || cfg.DBDsn == "" {
		return nil, nil
	}

	switch cfg.DBDialect {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DBDsn), &gorm.Config{Logger: newLogger})
	default:
		return nil, fmt.Errorf("unsupported DB_DIALECT: %s", cfg.DBDialect)
	}
}

// AutoMigrate runs database migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&models.AuditRun{},
		&models.FlaggedFedkey{},
	)
}

// RecordRun appends one completed run and its flagged keys to the audit
// trail. No-op when persistence is disabled.
func RecordRun(db *gorm.DB, res monitor.Result) error {
	if db == nil {
		return nil
	}
	run := models.AuditRun{
		RanAt:          time.Now().UTC(),
		ChainHeight:    res.ChainHeight,
		BestProposalID: res.BestProposalID,
		Lookback:       res.Lookback,
		FlaggedCount:   len(res.Flagged),
		Report:         res.Report,
	}
	if err := db.Create(&run).Error; err != nil {
		return fmt.Errorf("record audit run: %w", err)
	}
	for _, fedkey := range res.Flagged {
		rec := models.FlaggedFedkey{AuditRunID: run.ID, Fedkey: fedkey}
		if err := db.Create(&rec).Error; err != nil {
			return fmt.Errorf("record flagged fedkey: %w", err)
		}
	}
	return nil
}
