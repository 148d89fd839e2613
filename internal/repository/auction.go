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

// PostgresAuctionRepository handles database operations for auctions
type PostgresAuctionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAuctionRepository creates a new auction repository
func NewPostgresAuctionRepository(db *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{db: db}
}

// Monetary columns travel as text and are parsed into decimals on scan.
const auctionColumns = `
	id, title, description, facebook_url, facebook_post_id,
	starting_bid::text, current_bid::text, min_increment::text,
	bid_count, status, start_time, end_time,
	user_id, facebook_group_id, image_urls, is_live_feed,
	created_at, updated_at`

func scanAuction(row pgx.Row) (*models.Auction, error) {
	var (
		a                               models.Auction
		startingBid, currentBid, incr   string
		status                          string
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.FacebookURL, &a.FacebookPostID,
		&startingBid, &currentBid, &incr,
		&a.BidCount, &status, &a.StartTime, &a.EndTime,
		&a.UserID, &a.FacebookGroupID, &a.ImageURLs, &a.IsLiveFeed,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = models.AuctionStatus(status)
	if a.StartingBid, err = decimal.NewFromString(startingBid); err != nil {
		return nil, fmt.Errorf("bad starting_bid %q: %w", startingBid, err)
	}
	if a.CurrentBid, err = decimal.NewFromString(currentBid); err != nil {
		return nil, fmt.Errorf("bad current_bid %q: %w", currentBid, err)
	}
	if a.MinIncrement, err = decimal.NewFromString(incr); err != nil {
		return nil, fmt.Errorf("bad min_increment %q: %w", incr, err)
	}
	return &a, nil
}

// CreateAuction creates a new draft auction with current_bid set to the
// starting bid
func (r *PostgresAuctionRepository) CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error) {
	query := `
		INSERT INTO auctions (
			id, title, description, facebook_url,
			starting_bid, current_bid, min_increment, bid_count, status,
			start_time, end_time, user_id, facebook_group_id, image_urls, is_live_feed,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5::numeric, $5::numeric, $6::numeric, 0, 'draft', $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING ` + auctionColumns
	auction, err := scanAuction(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.Title, in.Description, in.FacebookURL,
		in.StartingBid.String(), in.MinIncrement.String(),
		in.StartTime, in.EndTime, in.UserID, in.FacebookGroupID, in.ImageURLs, in.IsLiveFeed,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}
	return auction, nil
}

// GetAuction retrieves an auction by ID
func (r *PostgresAuctionRepository) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	auction, err := scanAuction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auction %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

// ListAuctions returns auctions matching the filter, newest first
func (r *PostgresAuctionRepository) ListAuctions(ctx context.Context, f AuctionFilter) ([]models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT CASE WHEN $3 > 0 THEN $3 END`
	rows, err := r.db.Query(ctx, query, f.UserID, string(f.Status), f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var out []models.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return out, nil
}

// UpdateAuction merges the provided fields and re-stamps updated_at
func (r *PostgresAuctionRepository) UpdateAuction(ctx context.Context, id string, upd AuctionUpdate) (*models.Auction, error) {
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
		UPDATE auctions SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			facebook_url = COALESCE($4, facebook_url),
			facebook_post_id = COALESCE($5, facebook_post_id),
			current_bid = COALESCE($6::numeric, current_bid),
			bid_count = COALESCE($7, bid_count),
			status = COALESCE($8, status),
			image_urls = COALESCE($9::text[], image_urls),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + auctionColumns
	auction, err := scanAuction(r.db.QueryRow(ctx, query,
		id, upd.Title, upd.Description, upd.FacebookURL, upd.FacebookPostID,
		currentBid, upd.BidCount, status, upd.ImageURLs,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auction %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}
	return auction, nil
}

// DeleteAuction deletes an auction. Deleting an absent id is not an error;
// the boolean reports whether a row was removed
func (r *PostgresAuctionRepository) DeleteAuction(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete auction: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
