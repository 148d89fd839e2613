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

// PostgresBidRepository handles database operations for bids
type PostgresBidRepository struct {
	db *pgxpool.Pool
}

// NewPostgresBidRepository creates a new bid repository
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{db: db}
}

const bidColumns = `id, amount::text, bidder, bidder_facebook_id, auction_id, user_id, is_winning, created_at`

func scanBid(row pgx.Row) (*models.Bid, error) {
	var (
		b      models.Bid
		amount string
	)
	err := row.Scan(
		&b.ID, &amount, &b.Bidder, &b.BidderFacebookID,
		&b.AuctionID, &b.UserID, &b.IsWinning, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	return &b, nil
}

// CreateBid creates a new bid record
func (r *PostgresBidRepository) CreateBid(ctx context.Context, in CreateBidInput) (*models.Bid, error) {
	query := `
		INSERT INTO bids (id, amount, bidder, bidder_facebook_id, auction_id, user_id, is_winning, created_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, now())
		RETURNING ` + bidColumns
	bid, err := scanBid(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.Amount.String(), in.Bidder, in.BidderFacebookID,
		in.AuctionID, in.UserID, in.IsWinning,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}
	return bid, nil
}

// GetBid retrieves a bid by ID
func (r *PostgresBidRepository) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	bid, err := scanBid(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bid %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// ListBidsForAuction returns all bids for an auction, newest first
func (r *PostgresBidRepository) ListBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 ORDER BY created_at DESC`
	return r.listBids(ctx, query, auctionID)
}

// ListBidsForUser returns all bids placed by a user, newest first
func (r *PostgresBidRepository) ListBidsForUser(ctx context.Context, userID string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listBids(ctx, query, userID)
}

func (r *PostgresBidRepository) listBids(ctx context.Context, query string, arg any) ([]models.Bid, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return out, nil
}

// SettleBid demotes every prior bid on the auction, inserts the new bid as
// the sole winner and advances the auction's settlement fields, all in one
// transaction. An error on any step rolls the whole settlement back.
func (r *PostgresBidRepository) SettleBid(ctx context.Context, in CreateBidInput) (*models.Bid, *models.Auction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE bids SET is_winning = false WHERE auction_id = $1 AND is_winning`, in.AuctionID); err != nil {
		return nil, nil, fmt.Errorf("failed to mark bids losing: %w", err)
	}

	insert := `
		INSERT INTO bids (id, amount, bidder, bidder_facebook_id, auction_id, user_id, is_winning, created_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, true, now())
		RETURNING ` + bidColumns
	bid, err := scanBid(tx.QueryRow(ctx, insert,
		uuid.New().String(), in.Amount.String(), in.Bidder, in.BidderFacebookID,
		in.AuctionID, in.UserID,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record bid: %w", err)
	}

	update := `
		UPDATE auctions
		SET current_bid = $2::numeric, bid_count = bid_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING ` + auctionColumns
	auction, err := scanAuction(tx.QueryRow(ctx, update, in.AuctionID, in.Amount.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("auction %s: %w", in.AuctionID, auctionerrors.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to advance auction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return bid, auction, nil
}
