package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_report/internal/models"
)

func trip(start, end string, dist float64) NewTripEntry {
	return NewTripEntry{
		PickupLocation:   "東京倉庫",
		DeliveryLocation: "横浜店",
		StartTime:        &start,
		EndTime:          &end,
		Distance:         &dist,
	}
}

func TestAddTripEntryRecalculatesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")

	e1, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("09:00", "09:30", 5))
	require.NoError(t, err)
	e2, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("10:00", "10:18", 10))
	require.NoError(t, err)
	assert.Equal(t, 1, e1.Sequence)
	assert.Equal(t, 2, e2.Sequence)

	got, err := f.store.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.TotalDistance)
	assert.Equal(t, 0.8, got.TotalWorkingHours)
}

func TestDeleteTripEntryLeavesSequenceGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")

	e1, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("09:00", "09:30", 5))
	require.NoError(t, err)
	e2, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("10:00", "10:18", 10))
	require.NoError(t, err)

	require.NoError(t, f.svc.Trips.Delete(ctx, f.owner, e1.ID))

	entries, err := f.store.ListTripEntries(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e2.ID, entries[0].ID)
	assert.Equal(t, 2, entries[0].Sequence)

	got, err := f.store.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.TotalDistance)
	assert.Equal(t, 0.3, got.TotalWorkingHours)

	e3, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("11:00", "11:30", 1))
	require.NoError(t, err)
	assert.Equal(t, 3, e3.Sequence)
}

func TestUpdateTripEntryAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")
	e, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("09:00", "09:30", 5))
	require.NoError(t, err)

	patch := models.TripEntryPatch{Distance: floatPtr(7.5)}

	_, err = f.svc.Trips.Update(ctx, f.other, e.ID, patch)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Trips.Update(ctx, Principal{}, e.ID, patch)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	updated, err := f.svc.Trips.Update(ctx, f.admin, e.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, 7.5, *updated.Distance)
	assert.Equal(t, 1, updated.Sequence)

	got, err := f.store.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.TotalDistance)
}

func TestTripEntryErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")

	_, err := f.svc.Trips.Add(ctx, f.owner, models.NewID(), trip("09:00", "09:30", 5))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Trips.Add(ctx, f.other, r.ID, trip("09:00", "09:30", 5))
	assert.ErrorIs(t, err, ErrForbidden)

	bad := trip("09:00", "09:30", -1)
	_, err = f.svc.Trips.Add(ctx, f.owner, r.ID, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.Trips.Update(ctx, f.owner, models.NewID(), models.TripEntryPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.Trips.Delete(ctx, f.owner, models.NewID())
	assert.ErrorIs(t, err, ErrNotFound)

	e, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("09:00", "09:30", 5))
	require.NoError(t, err)
	_, err = f.svc.Trips.Update(ctx, f.owner, e.ID, models.TripEntryPatch{PickupLocation: strPtr("  ")})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, f.svc.Trips.Delete(ctx, f.other, e.ID), ErrForbidden)
}

func TestConcurrentAddsGetDistinctSequences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Trips.Add(ctx, f.owner, r.ID, trip("09:00", "09:30", 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := f.store.ListTripEntries(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Sequence)
	}
	got, err := f.store.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(n), got.TotalDistance)
	assert.Equal(t, 4.0, got.TotalWorkingHours)
}
