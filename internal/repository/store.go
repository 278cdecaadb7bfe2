// Package repository holds persistence for reports, drivers, vehicles and
// roles. Services depend on Store; GormStore is the Postgres implementation.
package repository

import (
	"context"
	"errors"

	"daily_report/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ReportQuery selects one keyset page of reports ordered by date desc, id desc.
// At most one of DriverID and VehicleID is used; DriverID wins.
type ReportQuery struct {
	DriverID  string
	VehicleID string
	Cursor    string
	Limit     int
}

// ReportPage is one page of reports plus the cursor for the next page.
type ReportPage struct {
	Reports        []models.DailyReport
	ContinueCursor string
	IsDone         bool
}

type Store interface {
	// WithTx runs fn against a Store bound to a single transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	GetUserRole(ctx context.Context, userID string) (*models.UserRole, error)
	ListUserRoles(ctx context.Context) ([]models.UserRole, error)
	CountAdmins(ctx context.Context) (int64, error)
	// LockSetup serializes sample-data setup and the first-admin bootstrap
	// until the enclosing transaction ends. Outside a transaction it is
	// released immediately.
	LockSetup(ctx context.Context) error
	SaveUserRole(ctx context.Context, r *models.UserRole) error

	CreateDriver(ctx context.Context, d *models.Driver) error
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	// GetDriverByUser returns the user's active driver record, falling back to
	// an inactive one.
	GetDriverByUser(ctx context.Context, userID string) (*models.Driver, error)
	ListActiveDrivers(ctx context.Context) ([]models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	SaveDriver(ctx context.Context, d *models.Driver) error

	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error)
	CountVehicles(ctx context.Context) (int64, error)
	SaveVehicle(ctx context.Context, v *models.Vehicle) error

	CreateReport(ctx context.Context, r *models.DailyReport) error
	GetReport(ctx context.Context, id string) (*models.DailyReport, error)
	// LockReport reads the report and holds a row lock until the enclosing
	// transaction ends.
	LockReport(ctx context.Context, id string) (*models.DailyReport, error)
	FindReportByDateDriver(ctx context.Context, date, driverID string) (*models.DailyReport, error)
	ListReports(ctx context.Context, q ReportQuery) (*ReportPage, error)
	AllReports(ctx context.Context) ([]models.DailyReport, error)
	SaveReport(ctx context.Context, r *models.DailyReport) error
	UpdateReportTotals(ctx context.Context, id string, distance, hours float64) error

	CreateTripEntry(ctx context.Context, e *models.TripEntry) error
	GetTripEntry(ctx context.Context, id string) (*models.TripEntry, error)
	ListTripEntries(ctx context.Context, reportID string) ([]models.TripEntry, error)
	// MaxTripSequence returns 0 for a report with no entries.
	MaxTripSequence(ctx context.Context, reportID string) (int, error)
	SaveTripEntry(ctx context.Context, e *models.TripEntry) error
	DeleteTripEntry(ctx context.Context, id string) error

	CreateAttachment(ctx context.Context, a *models.Attachment) error
	GetAttachment(ctx context.Context, id string) (*models.Attachment, error)
	ListAttachments(ctx context.Context, reportID string) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
}

// ClampLimit applies the default and maximum page sizes.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
