package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

func nowOrDefault(clock domain.Clock) domain.Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

// requireUser loads a user, mapping a missing row to a NotFound error.
func requireUser(ctx context.Context, users domain.UserRepository, id int64) (*models.User, error) {
	user, err := users.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("user with id %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func requireItem(ctx context.Context, items domain.ItemRepository, id int64) (*models.Item, error) {
	item, err := items.GetItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("item with id %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func publish(bus domain.EventPublisher, logger *zerolog.Logger, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
