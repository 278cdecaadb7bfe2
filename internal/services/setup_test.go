package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_report/internal/models"
	"daily_report/internal/repository/repotest"
)

func TestSampleDataBootstrapsFirstAdmin(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewMemStore()
	svc := New(store, Options{Tokens: fakeTokens{}})

	u := &models.User{Name: "First", Email: "first@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, u))
	first := Principal{UserID: u.ID}

	res, err := svc.Setup.SampleData(ctx, first)
	require.NoError(t, err)
	assert.True(t, res.AdminGranted)
	assert.True(t, res.DriverCreated)
	assert.Equal(t, len(sampleVehicles), res.VehiclesCreated)

	role, err := svc.Identity.CurrentRole(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, *role)

	d, err := svc.Identity.CurrentDriver(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "テスト運転手", d.Name)

	again, err := svc.Setup.SampleData(ctx, first)
	require.NoError(t, err)
	assert.False(t, again.AdminGranted)
	assert.False(t, again.DriverCreated)
	assert.Zero(t, again.VehiclesCreated)
	assert.Equal(t, "sample data already present", again.Message)

	vehicles, err := svc.Vehicles.List(ctx, first)
	require.NoError(t, err)
	assert.Len(t, vehicles, len(sampleVehicles))
}

func TestSampleDataRequiresAdminOnceOneExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Setup.SampleData(ctx, f.owner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Setup.SampleData(ctx, Principal{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// vehicles already exist so only the admin's driver record is added
	res, err := f.svc.Setup.SampleData(ctx, f.admin)
	require.NoError(t, err)
	assert.Zero(t, res.VehiclesCreated)
	assert.True(t, res.DriverCreated)
	assert.False(t, res.AdminGranted)
}

func TestSampleDataConcurrentFirstCallersPromoteOne(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewMemStore()
	svc := New(store, Options{Tokens: fakeTokens{}})

	var callers []Principal
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := &models.User{Name: email, Email: email, Password: "x"}
		require.NoError(t, store.CreateUser(ctx, u))
		callers = append(callers, Principal{UserID: u.ID})
	}

	var wg sync.WaitGroup
	results := make([]*SetupResult, len(callers))
	errs := make([]error, len(callers))
	for i, p := range callers {
		wg.Add(1)
		go func(i int, p Principal) {
			defer wg.Done()
			results[i], errs[i] = svc.Setup.SampleData(ctx, p)
		}(i, p)
	}
	wg.Wait()

	granted, forbidden := 0, 0
	for i := range callers {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], ErrForbidden)
			forbidden++
			continue
		}
		if results[i].AdminGranted {
			granted++
		}
	}
	assert.Equal(t, 1, granted)
	assert.Equal(t, len(callers)-1, forbidden)

	n, err := store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	vehicles, err := store.ListActiveVehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, len(sampleVehicles))
}
