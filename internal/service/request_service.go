package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	requests domain.RequestRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	now      domain.Clock
	logger   *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	now domain.Clock,
	logger *zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		now:      nowOrDefault(now),
		logger:   logger,
	}
}

// CreateRequest records a wish for an item, stamped with the server time.
func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequestView, error) {
	if _, err := requireUser(ctx, s.users, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		RequestorID: requestorID,
		Description: description,
		Created:     s.now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("item request created")
	return &models.ItemRequestView{ItemRequest: *request, Items: []models.ItemRef{}}, nil
}

func (s *RequestService) ListOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequestView, error) {
	requests, err := s.requests.ListRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOtherRequests returns every request not authored by requestorID.
func (s *RequestService) ListOtherRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequestView, error) {
	requests, err := s.requests.ListRequestsExcept(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, id int64) (*models.ItemRequestView, error) {
	request, err := s.requests.GetRequest(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("item request with id %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	views, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// withItems attaches the items answering each request.
func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	refs, err := s.items.ListItemRefsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]models.ItemRef, len(requests))
	for _, ref := range refs {
		byRequest[ref.RequestID] = append(byRequest[ref.RequestID], *ref)
	}

	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		items := byRequest[r.ID]
		if items == nil {
			items = []models.ItemRef{}
		}
		views = append(views, &models.ItemRequestView{ItemRequest: *r, Items: items})
	}

	s.logger.Debug().Int("count", len(views)).Msg("item requests resolved")
	return views, nil
}
