package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64         `json:"id" db:"id"`
	ItemID   int64         `json:"itemId" db:"item_id"`
	BookerID int64         `json:"bookerId" db:"booker_id"`
	Start    time.Time     `json:"start" db:"start_time"`
	End      time.Time     `json:"end" db:"end_time"`
	Status   BookingStatus `json:"status" db:"status"`
	Version  int64         `json:"-" db:"version"`
}

// BookingView is a booking with its item and booker resolved.
type BookingView struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Item   Item          `json:"item"`
	Booker User          `json:"booker"`
}

// BookingState selects a bucket of bookings in listings.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var ErrUnknownState = errors.New("unknown state")

var bookingStates = map[string]BookingState{
	string(StateAll):      StateAll,
	string(StateCurrent):  StateCurrent,
	string(StatePast):     StatePast,
	string(StateFuture):   StateFuture,
	string(StateWaiting):  StateWaiting,
	string(StateRejected): StateRejected,
}

// ParseState resolves a state token case-insensitively. An empty token means ALL.
func ParseState(raw string) (BookingState, error) {
	if strings.TrimSpace(raw) == "" {
		return StateAll, nil
	}
	state, ok := bookingStates[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownState, raw)
	}
	return state, nil
}

// BookingFilter is the storage-level form of a state. Zero values mean "no constraint".
type BookingFilter struct {
	BookerID    int64
	OwnerID     int64
	StartBefore time.Time
	StartAfter  time.Time
	EndBefore   time.Time
	EndAfter    time.Time
	Status      BookingStatus
}

// FilterFor maps a state to a filter, using a single now for every comparison.
func FilterFor(state BookingState, now time.Time) BookingFilter {
	switch state {
	case StateCurrent:
		return BookingFilter{StartBefore: now, EndAfter: now}
	case StatePast:
		return BookingFilter{EndBefore: now}
	case StateFuture:
		return BookingFilter{StartAfter: now}
	case StateWaiting:
		return BookingFilter{Status: StatusWaiting}
	case StateRejected:
		return BookingFilter{Status: StatusRejected}
	default:
		return BookingFilter{}
	}
}

// Matches reports whether b falls into the filter's time and status bounds.
func (f BookingFilter) Matches(b Booking) bool {
	if !f.StartBefore.IsZero() && !b.Start.Before(f.StartBefore) {
		return false
	}
	if !f.StartAfter.IsZero() && !b.Start.After(f.StartAfter) {
		return false
	}
	if !f.EndBefore.IsZero() && !b.End.Before(f.EndBefore) {
		return false
	}
	if !f.EndAfter.IsZero() && !b.End.After(f.EndAfter) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}
