package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, request_id`

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	query := db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	if err := db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	items := []*models.Item{}
	query := db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id`)
	if err := db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list items by owner: %w", err)
	}
	return items, nil
}

// SearchAvailableItems matches text case-insensitively against name or description.
func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	items := []*models.Item{}
	pattern := likePattern(text)
	query := db.Rebind(`SELECT ` + itemColumns + ` FROM items
		WHERE available = ?
		AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
		ORDER BY id`)
	if err := db.SelectContext(ctx, &items, query, true, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) ListItemRefsByRequests(ctx context.Context, requestIDs []int64) ([]*models.ItemRef, error) {
	refs := []*models.ItemRef{}
	if len(requestIDs) == 0 {
		return refs, nil
	}
	query, args, err := db.in(`SELECT id, name, owner_id, request_id FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build item refs query: %w", err)
	}
	if err := db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list items by requests: %w", err)
	}
	return refs, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := db.Rebind(`INSERT INTO items (owner_id, name, description, available, request_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowContext(ctx, query,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Available,
		item.RequestID,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := db.Rebind(`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`)
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireAffected(result)
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireAffected(result)
}
