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

// PostgresSettingsRepository handles database operations for user settings
type PostgresSettingsRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSettingsRepository creates a new settings repository
func NewPostgresSettingsRepository(db *pgxpool.Pool) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

const settingsColumns = `id, user_id, outbid_notifications, ending_notifications, new_bid_notifications, default_min_increment::text, default_duration, created_at, updated_at`

func scanSettings(row pgx.Row) (*models.UserSettings, error) {
	var (
		s         models.UserSettings
		increment string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.OutbidNotifications, &s.EndingNotifications,
		&s.NewBidNotifications, &increment, &s.DefaultDuration, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.DefaultMinIncrement, err = decimal.NewFromString(increment); err != nil {
		return nil, fmt.Errorf("bad default_min_increment %q: %w", increment, err)
	}
	return &s, nil
}

// CreateSettings creates a settings row. The user_id column is unique, so a
// second row for the same user fails with ErrDuplicateKey
func (r *PostgresSettingsRepository) CreateSettings(ctx context.Context, in CreateSettingsInput) (*models.UserSettings, error) {
	query := `
		INSERT INTO user_settings (id, user_id, outbid_notifications, ending_notifications, new_bid_notifications, default_min_increment, default_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, now(), now())
		RETURNING ` + settingsColumns
	settings, err := scanSettings(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.UserID, in.OutbidNotifications, in.EndingNotifications,
		in.NewBidNotifications, in.DefaultMinIncrement.String(), in.DefaultDuration,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("settings for user %s: %w", in.UserID, auctionerrors.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return settings, nil
}

// GetSettingsForUser retrieves the settings row for a user
func (r *PostgresSettingsRepository) GetSettingsForUser(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM user_settings WHERE user_id = $1`
	settings, err := scanSettings(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("settings for user %s: %w", userID, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettingsForUser merges the provided fields and re-stamps updated_at
func (r *PostgresSettingsRepository) UpdateSettingsForUser(ctx context.Context, userID string, upd SettingsUpdate) (*models.UserSettings, error) {
	var increment *string
	if upd.DefaultMinIncrement != nil {
		s := upd.DefaultMinIncrement.String()
		increment = &s
	}

	query := `
		UPDATE user_settings SET
			outbid_notifications = COALESCE($2, outbid_notifications),
			ending_notifications = COALESCE($3, ending_notifications),
			new_bid_notifications = COALESCE($4, new_bid_notifications),
			default_min_increment = COALESCE($5::numeric, default_min_increment),
			default_duration = COALESCE($6, default_duration),
			updated_at = now()
		WHERE user_id = $1
		RETURNING ` + settingsColumns
	settings, err := scanSettings(r.db.QueryRow(ctx, query,
		userID, upd.OutbidNotifications, upd.EndingNotifications,
		upd.NewBidNotifications, increment, upd.DefaultDuration,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("settings for user %s: %w", userID, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
