// Package migrations applies one-time, versioned data migrations on top of
// gorm's AutoMigrate. Applied versions are recorded in schema_migrations.
package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"daily_report/internal/models"
	"daily_report/internal/repository"
	"daily_report/internal/services"
)

type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *gorm.DB) error
}

// All is the ordered list of migrations shipped with the binary.
var All = []Migration{
	{Version: 1, Name: "drop_is_submitted", Up: dropIsSubmitted},
	{Version: 2, Name: "recalc_report_totals", Up: recalcReportTotals},
}

// dropIsSubmitted removes the legacy submission flag; approval replaced it.
func dropIsSubmitted(ctx context.Context, tx *gorm.DB) error {
	m := tx.WithContext(ctx).Migrator()
	if !m.HasColumn(&models.DailyReport{}, "is_submitted") {
		return nil
	}
	return m.DropColumn(&models.DailyReport{}, "is_submitted")
}

// recalcReportTotals rewrites every report's totals from its trip entries.
func recalcReportTotals(ctx context.Context, tx *gorm.DB) error {
	store := repository.NewGormStore(tx)
	reports, err := store.AllReports(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		entries, err := store.ListTripEntries(ctx, r.ID)
		if err != nil {
			return err
		}
		t := services.ComputeTotals(entries)
		if t.Distance == r.TotalDistance && t.WorkingHours == r.TotalWorkingHours {
			continue
		}
		if err := store.UpdateReportTotals(ctx, r.ID, t.Distance, t.WorkingHours); err != nil {
			return fmt.Errorf("report %s: %w", r.ID, err)
		}
	}
	return nil
}

// validate requires strictly increasing versions.
func validate(ms []Migration) error {
	prev := 0
	for _, m := range ms {
		if m.Version <= prev {
			return fmt.Errorf("migration %d (%s) is out of order", m.Version, m.Name)
		}
		if m.Up == nil {
			return fmt.Errorf("migration %d (%s) has no Up", m.Version, m.Name)
		}
		prev = m.Version
	}
	return nil
}

// pending filters out versions already applied.
func pending(ms []Migration, applied map[int]bool) []Migration {
	var out []Migration
	for _, m := range ms {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// Run applies every pending migration, each in its own transaction, and
// returns the versions it applied.
func Run(ctx context.Context, db *gorm.DB, ms []Migration) ([]int, error) {
	if err := validate(ms); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&models.SchemaMigration{}); err != nil {
		return nil, err
	}

	var done []models.SchemaMigration
	if err := db.WithContext(ctx).Find(&done).Error; err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(done))
	for _, d := range done {
		applied[d.Version] = true
	}

	var versions []int
	for _, m := range pending(ms, applied) {
		m := m
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return versions, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		logrus.WithFields(logrus.Fields{"version": m.Version, "name": m.Name}).Info("migration applied")
		versions = append(versions, m.Version)
	}
	return versions, nil
}
