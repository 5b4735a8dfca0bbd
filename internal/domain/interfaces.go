package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
	ListItemRefsByRequests(ctx context.Context, requestIDs []int64) ([]*models.ItemRef, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingView(ctx context.Context, id int64) (*models.BookingView, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.BookingView, error)
	LastBookingEnd(ctx context.Context, itemID int64, now time.Time) (*time.Time, error)
	NextBookingStart(ctx context.Context, itemID int64, now time.Time) (*time.Time, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock supplies the current time to services.
type Clock func() time.Time
