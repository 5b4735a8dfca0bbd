package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingViewSelect = `SELECT b.id, b.item_id, b.booker_id, b.start_time, b.end_time, b.status, b.version,
		i.name AS item_name, i.description AS item_description, i.available AS item_available,
		i.owner_id AS item_owner_id, i.request_id AS item_request_id,
		u.name AS booker_name, u.email AS booker_email
	FROM bookings b
	JOIN items i ON i.id = b.item_id
	JOIN users u ON u.id = b.booker_id`

type bookingViewRow struct {
	models.Booking
	ItemName        string `db:"item_name"`
	ItemDescription string `db:"item_description"`
	ItemAvailable   bool   `db:"item_available"`
	ItemOwnerID     int64  `db:"item_owner_id"`
	ItemRequestID   *int64 `db:"item_request_id"`
	BookerName      string `db:"booker_name"`
	BookerEmail     string `db:"booker_email"`
}

func (r bookingViewRow) view() *models.BookingView {
	return &models.BookingView{
		ID:     r.ID,
		Start:  r.Start,
		End:    r.End,
		Status: r.Status,
		Item: models.Item{
			ID:          r.ItemID,
			OwnerID:     r.ItemOwnerID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			RequestID:   r.ItemRequestID,
		},
		Booker: models.User{ID: r.BookerID, Name: r.BookerName, Email: r.BookerEmail},
	}
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	query := db.Rebind(`SELECT id, item_id, booker_id, start_time, end_time, status, version FROM bookings WHERE id = ?`)
	if err := db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetBookingView returns the booking with its item and booker resolved.
func (db *DB) GetBookingView(ctx context.Context, id int64) (*models.BookingView, error) {
	var row bookingViewRow
	if err := db.GetContext(ctx, &row, db.Rebind(bookingViewSelect+` WHERE b.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking view: %w", err)
	}
	return row.view(), nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := db.Rebind(`INSERT INTO bookings (item_id, booker_id, start_time, end_time, status, version)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		utc(booking.Start),
		utc(booking.End),
		booking.Status,
		1,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.Version = 1
	return nil
}

// UpdateBookingStatusWithVersion sets the status only if the row still has
// the given version, bumping it on success.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status models.BookingStatus) error {
	query := db.Rebind(`UPDATE bookings SET status = ?, version = version + 1 WHERE id = ? AND version = ?`)
	result, err := db.ExecContext(ctx, query, status, id, version)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns bookings matching filter, newest start first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.BookingView, error) {
	where, args := bookingConditions(filter)
	query := bookingViewSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY b.start_time DESC, b.id DESC"

	rows := []bookingViewRow{}
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	views := make([]*models.BookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}

func bookingConditions(f models.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.BookerID != 0 {
		add("b.booker_id = ?", f.BookerID)
	}
	if f.OwnerID != 0 {
		add("i.owner_id = ?", f.OwnerID)
	}
	if !f.StartBefore.IsZero() {
		add("b.start_time < ?", utc(f.StartBefore))
	}
	if !f.StartAfter.IsZero() {
		add("b.start_time > ?", utc(f.StartAfter))
	}
	if !f.EndBefore.IsZero() {
		add("b.end_time < ?", utc(f.EndBefore))
	}
	if !f.EndAfter.IsZero() {
		add("b.end_time > ?", utc(f.EndAfter))
	}
	if f.Status != "" {
		add("b.status = ?", f.Status)
	}

	return strings.Join(conds, " AND "), args
}

// LastBookingEnd returns the latest end time at or before now.
func (db *DB) LastBookingEnd(ctx context.Context, itemID int64, now time.Time) (*time.Time, error) {
	query := `SELECT end_time FROM bookings WHERE item_id = ? AND end_time <= ? ORDER BY end_time DESC LIMIT 1`
	return db.boundaryTime(ctx, query, itemID, now)
}

// NextBookingStart returns the earliest start time at or after now.
func (db *DB) NextBookingStart(ctx context.Context, itemID int64, now time.Time) (*time.Time, error) {
	query := `SELECT start_time FROM bookings WHERE item_id = ? AND start_time >= ? ORDER BY start_time ASC LIMIT 1`
	return db.boundaryTime(ctx, query, itemID, now)
}

func (db *DB) boundaryTime(ctx context.Context, query string, itemID int64, now time.Time) (*time.Time, error) {
	var t time.Time
	err := db.QueryRowContext(ctx, db.Rebind(query), itemID, utc(now)).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking boundary: %w", err)
	}
	return &t, nil
}

// HasFinishedBooking reports whether bookerID has a booking of itemID that ended before now.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	query := db.Rebind(`SELECT EXISTS (SELECT 1 FROM bookings WHERE booker_id = ? AND item_id = ? AND end_time < ?)`)
	if err := db.QueryRowContext(ctx, query, bookerID, itemID, utc(now)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return exists, nil
}
