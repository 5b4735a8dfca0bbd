package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, requestor_id, description, created`

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	query := db.Rebind(`SELECT ` + requestColumns + ` FROM requests WHERE id = ?`)
	if err := db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := db.Rebind(`INSERT INTO requests (requestor_id, description, created) VALUES (?, ?, ?) RETURNING id`)
	err := db.QueryRowContext(ctx, query, request.RequestorID, request.Description, utc(request.Created)).Scan(&request.ID)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return db.listRequests(ctx, `WHERE requestor_id = ?`, requestorID)
}

// ListRequestsExcept returns the requests of every user other than requestorID.
func (db *DB) ListRequestsExcept(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return db.listRequests(ctx, `WHERE requestor_id <> ?`, requestorID)
}

func (db *DB) listRequests(ctx context.Context, where string, args ...any) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	query := db.Rebind(`SELECT ` + requestColumns + ` FROM requests ` + where + ` ORDER BY created DESC, id DESC`)
	if err := db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}
