package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := db.Rebind(`INSERT INTO comments (item_id, author_id, text, created) VALUES (?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowContext(ctx, query,
		comment.ItemID,
		comment.AuthorID,
		comment.Text,
		utc(comment.Created),
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListCommentsByItems returns comments of all given items, oldest first.
func (db *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}

	query, args, err := db.in(`SELECT c.id, c.item_id, c.author_id, u.name AS author_name, c.text, c.created
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.item_id IN (?)
		ORDER BY c.created, c.id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build comments query: %w", err)
	}
	if err := db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
