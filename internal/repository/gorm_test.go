package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"daily_report/internal/config"
	"daily_report/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	truncate := func() {
		db.Exec("TRUNCATE users, user_roles, drivers, vehicles, daily_reports, trip_entries, attachments")
	}
	truncate()
	t.Cleanup(truncate)
	return db
}

func TestGormStoreReports(t *testing.T) {
	store := NewGormStore(openTestDB(t))
	ctx := context.Background()

	driverID, vehicleID := models.NewID(), models.NewID()
	dates := []string{"2024-03-01", "2024-03-02", "2024-03-03"}
	for _, d := range dates {
		require.NoError(t, store.CreateReport(ctx, &models.DailyReport{
			Date: d, DriverID: driverID, VehicleID: vehicleID, Status: models.StatusNormal,
		}))
	}

	err := store.CreateReport(ctx, &models.DailyReport{
		Date: "2024-03-01", DriverID: driverID, VehicleID: vehicleID, Status: models.StatusNormal,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	page, err := store.ListReports(ctx, ReportQuery{DriverID: driverID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Reports, 2)
	assert.False(t, page.IsDone)
	assert.Equal(t, "2024-03-03", page.Reports[0].Date)

	page, err = store.ListReports(ctx, ReportQuery{DriverID: driverID, Limit: 2, Cursor: page.ContinueCursor})
	require.NoError(t, err)
	require.Len(t, page.Reports, 1)
	assert.True(t, page.IsDone)
	assert.Equal(t, "2024-03-01", page.Reports[0].Date)

	_, err = store.GetReport(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.UpdateReportTotals(ctx, models.NewID(), 1, 1), ErrNotFound)
}

func TestGormStoreTripEntriesInTx(t *testing.T) {
	store := NewGormStore(openTestDB(t))
	ctx := context.Background()

	r := &models.DailyReport{Date: "2024-03-01", DriverID: models.NewID(), VehicleID: models.NewID(), Status: models.StatusNormal}
	require.NoError(t, store.CreateReport(ctx, r))

	err := store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.LockReport(ctx, r.ID); err != nil {
			return err
		}
		for i := 1; i <= 3; i++ {
			last, err := tx.MaxTripSequence(ctx, r.ID)
			if err != nil {
				return err
			}
			if err := tx.CreateTripEntry(ctx, &models.TripEntry{
				ReportID: r.ID, PickupLocation: "A", DeliveryLocation: "B", Sequence: last + 1,
			}); err != nil {
				return err
			}
		}
		return tx.UpdateReportTotals(ctx, r.ID, 12.5, 1.5)
	})
	require.NoError(t, err)

	entries, err := store.ListTripEntries(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.NoError(t, store.DeleteTripEntry(ctx, entries[0].ID))
	last, err := store.MaxTripSequence(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, last)

	got, err := store.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.TotalDistance)
	assert.Equal(t, 1.5, got.TotalWorkingHours)

	assert.ErrorIs(t, store.DeleteTripEntry(ctx, entries[0].ID), ErrNotFound)
}

func TestGormStoreRolesAndDrivers(t *testing.T) {
	store := NewGormStore(openTestDB(t))
	ctx := context.Background()

	u := &models.User{Name: "Taro", Email: "taro@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, u))
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{Name: "Dup", Email: "taro@example.com", Password: "x"}), ErrDuplicate)

	require.NoError(t, store.SaveUserRole(ctx, &models.UserRole{UserID: u.ID, Role: models.RoleAdmin}))
	n, err := store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	old := &models.Driver{UserID: u.ID, Name: "old", LicenseNumber: "1", IsActive: false}
	require.NoError(t, store.CreateDriver(ctx, old))
	// gorm skips a false zero value on insert and the column default applies
	old.IsActive = false
	require.NoError(t, store.SaveDriver(ctx, old))
	current := &models.Driver{UserID: u.ID, Name: "current", LicenseNumber: "2", IsActive: true}
	require.NoError(t, store.CreateDriver(ctx, current))

	d, err := store.GetDriverByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, d.ID)

	active, err := store.ListActiveDrivers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)
}

func TestGormStoreLockSetupSerializesBootstrap(t *testing.T) {
	store := NewGormStore(openTestDB(t))
	ctx := context.Background()

	var users []*models.User
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u := &models.User{Name: email, Email: email, Password: "x"}
		require.NoError(t, store.CreateUser(ctx, u))
		users = append(users, u)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			errs[i] = store.WithTx(ctx, func(tx Store) error {
				if err := tx.LockSetup(ctx); err != nil {
					return err
				}
				n, err := tx.CountAdmins(ctx)
				if err != nil || n > 0 {
					return err
				}
				// widen the window between the check and the write
				time.Sleep(50 * time.Millisecond)
				return tx.SaveUserRole(ctx, &models.UserRole{UserID: userID, Role: models.RoleAdmin})
			})
		}(i, u.ID)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	n, err := store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
