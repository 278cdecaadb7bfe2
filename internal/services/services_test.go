package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"daily_report/internal/models"
	"daily_report/internal/repository/repotest"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "token-" + userID, nil }

type fixture struct {
	store   *repotest.MemStore
	svc     *Services
	admin   Principal
	owner   Principal
	other   Principal
	driver  *models.Driver
	rival   *models.Driver
	vehicle *models.Vehicle
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func addUser(t *testing.T, f *fixture, name, email string) Principal {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "x"}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return Principal{UserID: u.ID}
}

// newFixture seeds one admin, two drivers (owner and other) and one vehicle.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: repotest.NewMemStore()}
	f.svc = New(f.store, Options{
		Tokens:       fakeTokens{},
		PasswordCost: bcrypt.MinCost,
		Now:          func() time.Time { return fixedNow },
	})

	f.admin = addUser(t, f, "管理者", "admin@example.com")
	require.NoError(t, f.store.SaveUserRole(ctx, &models.UserRole{UserID: f.admin.UserID, Role: models.RoleAdmin}))
	f.owner = addUser(t, f, "Taro", "taro@example.com")
	f.other = addUser(t, f, "Jiro", "jiro@example.com")

	var err error
	f.driver, err = f.svc.Drivers.Create(ctx, f.admin, NewDriver{UserID: f.owner.UserID, Name: "山田 太郎", LicenseNumber: "111"})
	require.NoError(t, err)
	f.rival, err = f.svc.Drivers.Create(ctx, f.admin, NewDriver{UserID: f.other.UserID, Name: "佐藤 次郎", LicenseNumber: "222"})
	require.NoError(t, err)
	f.vehicle, err = f.svc.Vehicles.Create(ctx, f.admin, NewVehicle{PlateNumber: "品川 300 あ 1111", Model: "いすゞ エルフ"})
	require.NoError(t, err)
	return f
}

func (f *fixture) report(t *testing.T, p Principal, date string) *models.DailyReport {
	t.Helper()
	r, err := f.svc.Reports.Create(context.Background(), p, NewReport{
		Date:      date,
		VehicleID: f.vehicle.ID,
		Status:    models.StatusNormal,
	})
	require.NoError(t, err)
	return r
}
