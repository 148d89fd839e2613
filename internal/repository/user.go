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
)

// PostgresUserRepository handles database operations for users
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, name, email, avatar, facebook_id, facebook_access_token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.Avatar,
		&u.FacebookID, &u.FacebookAccessToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user
func (r *PostgresUserRepository) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, name, email, avatar, facebook_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.Username, in.Name, in.Email, in.Avatar, in.FacebookID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", in.Username, auctionerrors.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (r *PostgresUserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("username %q: %w", username, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetUserByFacebookID retrieves a user by linked facebook id
func (r *PostgresUserRepository) GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE facebook_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, facebookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("facebook id %q: %w", facebookID, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by facebook id: %w", err)
	}
	return user, nil
}

// UpdateUser merges the provided fields and re-stamps updated_at
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			avatar = COALESCE($4, avatar),
			facebook_id = COALESCE($5, facebook_id),
			facebook_access_token = COALESCE($6, facebook_access_token),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query,
		id, upd.Name, upd.Email, upd.Avatar, upd.FacebookID, upd.FacebookAccessToken,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, auctionerrors.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("facebook id: %w", auctionerrors.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
