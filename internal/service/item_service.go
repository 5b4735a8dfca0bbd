package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	eventBus domain.EventPublisher
	now      domain.Clock
	logger   *zerolog.Logger
}

type ItemServiceDeps struct {
	Items    domain.ItemRepository
	Users    domain.UserRepository
	Bookings domain.BookingRepository
	Comments domain.CommentRepository
	Requests domain.RequestRepository
	EventBus domain.EventPublisher
	Now      domain.Clock
}

func NewItemService(deps ItemServiceDeps, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		items:    deps.Items,
		users:    deps.Users,
		bookings: deps.Bookings,
		comments: deps.Comments,
		requests: deps.Requests,
		eventBus: deps.EventBus,
		now:      nowOrDefault(deps.Now),
		logger:   logger,
	}
}

// CreateItem stores item for ownerID, linking it to the request it answers if any.
func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.ItemView, error) {
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}

	if item.RequestID != nil {
		_, err := s.requests.GetRequest(ctx, *item.RequestID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("item request with id %d not found", *item.RequestID)
		}
		if err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	publish(s.eventBus, s.logger, events.EventItemCreated, events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   ownerID,
		RequestID: item.RequestID,
	})

	return &models.ItemView{Item: *item, Comments: []models.Comment{}}, nil
}

// UpdateItem merges patch into the item. Only the owner may update it.
func (s *ItemService) UpdateItem(ctx context.Context, callerID, itemID int64, patch models.ItemPatch) (*models.ItemView, error) {
	if _, err := requireUser(ctx, s.users, callerID); err != nil {
		return nil, err
	}
	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, domain.AccessDenied(http.StatusForbidden, "user %d is not the owner of item %d", callerID, itemID)
	}

	patch.Apply(item)
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Msg("item updated")
	views, err := s.views(ctx, []*models.Item{item}, false)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// GetItem returns the item with comments. The owner also sees the
// surrounding bookings; callerID 0 means an anonymous caller.
func (s *ItemService) GetItem(ctx context.Context, callerID, itemID int64) (*models.ItemView, error) {
	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, []*models.Item{item}, callerID != 0 && callerID == item.OwnerID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("owner_id", ownerID).Int("count", len(items)).Msg("owner items listed")
	return s.views(ctx, items, true)
}

// Search finds available items whose name or description contains text.
// Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.ItemView, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.ItemView{}, nil
	}

	items, err := s.items.SearchAvailableItems(ctx, text)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("text", text).Int("count", len(items)).Msg("items searched")
	return s.views(ctx, items, false)
}

func (s *ItemService) DeleteItem(ctx context.Context, callerID, itemID int64) error {
	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != callerID {
		return domain.AccessDenied(http.StatusForbidden, "user %d is not the owner of item %d", callerID, itemID)
	}

	err = s.items.DeleteItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("item with id %d not found", itemID)
	}
	if err != nil {
		return err
	}

	s.logger.Info().Int64("item_id", itemID).Msg("item deleted")
	return nil
}

// AddComment lets a past renter comment on an item. Without a finished
// booking the call fails with AccessDenied carrying status 400.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	now := s.now()

	author, err := requireUser(ctx, s.users, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := requireItem(ctx, s.items, itemID); err != nil {
		return nil, err
	}

	finished, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.AccessDenied(http.StatusBadRequest, "user %d cannot comment on item %d without a finished booking", authorID, itemID)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", itemID).Msg("comment added")
	publish(s.eventBus, s.logger, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
	})
	return comment, nil
}

func (s *ItemService) views(ctx context.Context, items []*models.Item, withBookings bool) ([]*models.ItemView, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	comments, err := s.comments.ListCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64][]models.Comment, len(items))
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], *c)
	}

	now := s.now()
	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view := &models.ItemView{Item: *item, Comments: byItem[item.ID]}
		if view.Comments == nil {
			view.Comments = []models.Comment{}
		}

		if withBookings {
			if view.LastBooking, err = s.bookings.LastBookingEnd(ctx, item.ID, now); err != nil {
				return nil, err
			}
			if view.NextBooking, err = s.bookings.NextBookingStart(ctx, item.ID, now); err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}
