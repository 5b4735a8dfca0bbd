package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner, "Camera", true)

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	booking := createTestBooking(t, db, item, booker, start, end, models.StatusWaiting)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, int64(1), booking.Version)

	found, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, start.Equal(found.Start))
	assert.True(t, end.Equal(found.End))
	assert.Equal(t, models.StatusWaiting, found.Status)

	view, err := db.GetBookingView(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, view.Item.ID)
	assert.Equal(t, owner.ID, view.Item.OwnerID)
	assert.Equal(t, "Camera", view.Item.Name)
	assert.Equal(t, *booker, view.Booker)

	_, err = db.GetBooking(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetBookingView(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner, "Camera", true)
	now := time.Now().UTC()
	booking := createTestBooking(t, db, item, booker, now.Add(time.Hour), now.Add(2*time.Hour), models.StatusWaiting)

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusApproved))

	// stale version
	err := db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusRejected)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	found, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, found.Status)
	assert.Equal(t, int64(2), found.Version)
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	stranger := createTestUser(t, db, "stranger")
	item := createTestItem(t, db, owner, "Tent", true)
	strangerItem := createTestItem(t, db, stranger, "Canoe", true)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := createTestBooking(t, db, item, booker, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	current := createTestBooking(t, db, item, booker, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	future := createTestBooking(t, db, item, booker, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	rejected := createTestBooking(t, db, item, booker, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusRejected)
	createTestBooking(t, db, strangerItem, owner, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)

	ids := func(views []*models.BookingView) []int64 {
		out := make([]int64, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		state models.BookingState
		want  []int64
	}{
		{"All", models.StateAll, []int64{rejected.ID, future.ID, current.ID, past.ID}},
		{"Current", models.StateCurrent, []int64{current.ID}},
		{"Past", models.StatePast, []int64{past.ID}},
		{"Future", models.StateFuture, []int64{rejected.ID, future.ID}},
		{"Waiting", models.StateWaiting, []int64{future.ID}},
		{"Rejected", models.StateRejected, []int64{rejected.ID}},
	}

	for _, tt := range tests {
		t.Run("Booker"+tt.name, func(t *testing.T) {
			f := models.FilterFor(tt.state, now)
			f.BookerID = booker.ID
			views, err := db.ListBookings(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(views))
		})

		t.Run("Owner"+tt.name, func(t *testing.T) {
			f := models.FilterFor(tt.state, now)
			f.OwnerID = owner.ID
			views, err := db.ListBookings(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(views))
		})
	}

	views, err := db.ListBookings(ctx, models.BookingFilter{BookerID: stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestBookingBoundaries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner, "Grill", true)

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	last, err := db.LastBookingEnd(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, last)
	next, err := db.NextBookingStart(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, next)

	createTestBooking(t, db, item, booker, now.Add(-96*time.Hour), now.Add(-72*time.Hour), models.StatusApproved)
	createTestBooking(t, db, item, booker, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)
	createTestBooking(t, db, item, booker, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	createTestBooking(t, db, item, booker, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusWaiting)

	last, err = db.LastBookingEnd(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, now.Add(-24*time.Hour).Equal(*last))

	next, err = db.NextBookingStart(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, now.Add(24*time.Hour).Equal(*next))
}

func TestHasFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner, "Boat", true)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	createTestBooking(t, db, item, booker, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	ok, err := db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	createTestBooking(t, db, item, booker, now.Add(-2*time.Hour), now, models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "a booking ending exactly now is not finished")

	createTestBooking(t, db, item, booker, now.Add(-3*time.Hour), now.Add(-2*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.HasFinishedBooking(ctx, owner.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
