package repository

import (
	"context"
	"errors"
	"fmt"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLiveFeedRepository handles database operations for live feed
// sessions and their items
type PostgresLiveFeedRepository struct {
	db *pgxpool.Pool
}

// NewPostgresLiveFeedRepository creates a new live feed repository
func NewPostgresLiveFeedRepository(db *pgxpool.Pool) *PostgresLiveFeedRepository {
	return &PostgresLiveFeedRepository{db: db}
}

const sessionColumns = `id, name, user_id, facebook_group_id, is_active, current_item_index, bid_increment::text, item_duration, created_at, updated_at`

func scanSession(row pgx.Row) (*models.LiveFeedSession, error) {
	var (
		s         models.LiveFeedSession
		increment string
	)
	err := row.Scan(
		&s.ID, &s.Name, &s.UserID, &s.FacebookGroupID, &s.IsActive,
		&s.CurrentItemIndex, &increment, &s.ItemDuration, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.BidIncrement, err = decimal.NewFromString(increment); err != nil {
		return nil, fmt.Errorf("bad bid_increment %q: %w", increment, err)
	}
	return &s, nil
}

const itemColumns = `id, name, description, starting_bid::text, current_bid::text, session_id, order_index, status, image_urls, created_at`

func scanItem(row pgx.Row) (*models.LiveFeedItem, error) {
	var (
		it                      models.LiveFeedItem
		startingBid             string
		currentBid              *string
		status                  string
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &startingBid, &currentBid,
		&it.SessionID, &it.OrderIndex, &status, &it.ImageURLs, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Status = models.LiveFeedItemStatus(status)
	if it.StartingBid, err = decimal.NewFromString(startingBid); err != nil {
		return nil, fmt.Errorf("bad starting_bid %q: %w", startingBid, err)
	}
	if currentBid != nil {
		d, err := decimal.NewFromString(*currentBid)
		if err != nil {
			return nil, fmt.Errorf("bad current_bid %q: %w", *currentBid, err)
		}
		it.CurrentBid = &d
	}
	return &it, nil
}

// CreateSession creates a new inactive live feed session
func (r *PostgresLiveFeedRepository) CreateSession(ctx context.Context, in CreateSessionInput) (*models.LiveFeedSession, error) {
	query := `
		INSERT INTO live_feed_sessions (id, name, user_id, facebook_group_id, is_active, current_item_index, bid_increment, item_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, 0, $5::numeric, $6, now(), now())
		RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.Name, in.UserID, in.FacebookGroupID,
		in.BidIncrement.String(), in.ItemDuration,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a live feed session by ID
func (r *PostgresLiveFeedRepository) GetSession(ctx context.Context, id string) (*models.LiveFeedSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_feed_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessionsForUser returns the user's sessions, newest first
func (r *PostgresLiveFeedRepository) ListSessionsForUser(ctx context.Context, userID string) ([]models.LiveFeedSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_feed_sessions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.LiveFeedSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return out, nil
}

// UpdateSession merges the provided fields and re-stamps updated_at
func (r *PostgresLiveFeedRepository) UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*models.LiveFeedSession, error) {
	var increment *string
	if upd.BidIncrement != nil {
		s := upd.BidIncrement.String()
		increment = &s
	}

	query := `
		UPDATE live_feed_sessions SET
			name = COALESCE($2, name),
			is_active = COALESCE($3, is_active),
			current_item_index = COALESCE($4, current_item_index),
			bid_increment = COALESCE($5::numeric, bid_increment),
			item_duration = COALESCE($6, item_duration),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(ctx, query,
		id, upd.Name, upd.IsActive, upd.CurrentItemIndex, increment, upd.ItemDuration,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

// DeleteSession deletes a session and its items, idempotently
func (r *PostgresLiveFeedRepository) DeleteSession(ctx context.Context, id string) (bool, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM live_feed_items WHERE session_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete session items: %w", err)
	}
	result, err := r.db.Exec(ctx, `DELETE FROM live_feed_sessions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CreateItem creates a new pending live feed item
func (r *PostgresLiveFeedRepository) CreateItem(ctx context.Context, in CreateItemInput) (*models.LiveFeedItem, error) {
	query := `
		INSERT INTO live_feed_items (id, name, description, starting_bid, session_id, order_index, status, image_urls, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, 'pending', $7, now())
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.Name, in.Description, in.StartingBid.String(),
		in.SessionID, in.OrderIndex, in.ImageURLs,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// GetItem retrieves a live feed item by ID
func (r *PostgresLiveFeedRepository) GetItem(ctx context.Context, id string) (*models.LiveFeedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM live_feed_items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItemsForSession returns the session's items ordered by order index
// ascending
func (r *PostgresLiveFeedRepository) ListItemsForSession(ctx context.Context, sessionID string) ([]models.LiveFeedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM live_feed_items WHERE session_id = $1 ORDER BY order_index`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var out []models.LiveFeedItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return out, nil
}

// UpdateItem merges the provided fields
func (r *PostgresLiveFeedRepository) UpdateItem(ctx context.Context, id string, upd ItemUpdate) (*models.LiveFeedItem, error) {
	var currentBid *string
	if upd.CurrentBid != nil {
		s := upd.CurrentBid.String()
		currentBid = &s
	}
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}

	query := `
		UPDATE live_feed_items SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			current_bid = COALESCE($4::numeric, current_bid),
			order_index = COALESCE($5, order_index),
			status = COALESCE($6, status),
			image_urls = COALESCE($7::text[], image_urls)
		WHERE id = $1
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query,
		id, upd.Name, upd.Description, currentBid, upd.OrderIndex, status, upd.ImageURLs,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// DeleteItem deletes an item, idempotently
func (r *PostgresLiveFeedRepository) DeleteItem(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM live_feed_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
