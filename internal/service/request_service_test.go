package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("StampsCreated", func(t *testing.T) {
		requests, items, users := new(mockRequests), new(mockItems), new(mockUsers)
		svc := NewRequestService(requests, items, users, fixedClock, testLogger())

		users.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
		requests.On("CreateRequest", ctx, mock.MatchedBy(func(r *models.ItemRequest) bool {
			return r.RequestorID == 1 && r.Created.Equal(testNow) && r.Description == "Need a ladder"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.ItemRequest).ID = 5
		}).Return(nil)

		view, err := svc.CreateRequest(ctx, 1, "Need a ladder")
		require.NoError(t, err)
		assert.Equal(t, int64(5), view.ID)
		assert.NotNil(t, view.Items)
		assert.Empty(t, view.Items)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		requests, items, users := new(mockRequests), new(mockItems), new(mockUsers)
		svc := NewRequestService(requests, items, users, fixedClock, testLogger())

		users.On("GetUser", ctx, int64(9)).Return(nil, database.ErrNotFound)

		_, err := svc.CreateRequest(ctx, 9, "Need a ladder")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		requests.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})
}

func TestRequestService_ListsAttachItems(t *testing.T) {
	ctx := context.Background()
	requests, items, users := new(mockRequests), new(mockItems), new(mockUsers)
	svc := NewRequestService(requests, items, users, fixedClock, testLogger())

	own := []*models.ItemRequest{
		{ID: 2, RequestorID: 1, Description: "tent", Created: testNow},
		{ID: 1, RequestorID: 1, Description: "ladder", Created: testNow.Add(-1)},
	}
	requests.On("ListRequestsByRequestor", ctx, int64(1)).Return(own, nil)
	requests.On("ListRequestsExcept", ctx, int64(1)).Return([]*models.ItemRequest{}, nil)
	items.On("ListItemRefsByRequests", ctx, []int64{2, 1}).Return([]*models.ItemRef{
		{ID: 7, Name: "Ladder", OwnerID: 3, RequestID: 1},
	}, nil)
	items.On("ListItemRefsByRequests", ctx, []int64{}).Return([]*models.ItemRef{}, nil)

	views, err := svc.ListOwnRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].ID)
	assert.Empty(t, views[0].Items)
	require.Len(t, views[1].Items, 1)
	assert.Equal(t, "Ladder", views[1].Items[0].Name)

	others, err := svc.ListOtherRequests(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestRequestService_GetRequest(t *testing.T) {
	ctx := context.Background()
	requests, items, users := new(mockRequests), new(mockItems), new(mockUsers)
	svc := NewRequestService(requests, items, users, fixedClock, testLogger())

	requests.On("GetRequest", ctx, int64(1)).Return(&models.ItemRequest{ID: 1, Description: "ladder"}, nil)
	requests.On("GetRequest", ctx, int64(2)).Return(nil, database.ErrNotFound)
	items.On("ListItemRefsByRequests", ctx, []int64{1}).Return([]*models.ItemRef{}, nil)

	view, err := svc.GetRequest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ladder", view.Description)

	_, err = svc.GetRequest(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
