package config

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"daily_report/internal/logger"
	"daily_report/internal/models"
)

// Tables lists every model AutoMigrate manages.
var Tables = []interface{}{
	&models.User{},
	&models.UserRole{},
	&models.Driver{},
	&models.Vehicle{},
	&models.DailyReport{},
	&models.TripEntry{},
	&models.Attachment{},
	&models.SchemaMigration{},
}

func dialector(c DBConfig) gorm.Dialector {
	if c.Driver == "postgres" {
		// database/sql driver registered by lib/pq
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: c.DSN()})
	}
	return postgres.Open(c.DSN())
}

// OpenDB connects to Postgres with gorm statements logged through logrus.
func OpenDB(c DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(c), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger.GormLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or alters tables to match the models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
