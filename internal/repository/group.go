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

// PostgresGroupRepository handles database operations for facebook groups
type PostgresGroupRepository struct {
	db *pgxpool.Pool
}

// NewPostgresGroupRepository creates a new facebook group repository
func NewPostgresGroupRepository(db *pgxpool.Pool) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

const groupColumns = `id, facebook_group_id, name, member_count, user_id, is_active, created_at, updated_at`

func scanGroup(row pgx.Row) (*models.FacebookGroup, error) {
	var g models.FacebookGroup
	err := row.Scan(
		&g.ID, &g.FacebookGroupID, &g.Name, &g.MemberCount,
		&g.UserID, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup registers a new posting target
func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.FacebookGroup, error) {
	query := `
		INSERT INTO facebook_groups (id, facebook_group_id, name, member_count, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, now(), now())
		RETURNING ` + groupColumns
	group, err := scanGroup(r.db.QueryRow(ctx, query,
		uuid.New().String(), in.FacebookGroupID, in.Name, in.MemberCount, in.UserID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("facebook group %q: %w", in.FacebookGroupID, auctionerrors.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create facebook group: %w", err)
	}
	return group, nil
}

// GetGroup retrieves a facebook group by ID
func (r *PostgresGroupRepository) GetGroup(ctx context.Context, id string) (*models.FacebookGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM facebook_groups WHERE id = $1`
	group, err := scanGroup(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get facebook group: %w", err)
	}
	return group, nil
}

// ListActiveGroupsForUser returns the user's active groups ordered by name
func (r *PostgresGroupRepository) ListActiveGroupsForUser(ctx context.Context, userID string) ([]models.FacebookGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM facebook_groups WHERE user_id = $1 AND is_active ORDER BY name`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facebook groups: %w", err)
	}
	defer rows.Close()

	var out []models.FacebookGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan facebook group: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list facebook groups: %w", err)
	}
	return out, nil
}

// UpdateGroup merges the provided fields and re-stamps updated_at
func (r *PostgresGroupRepository) UpdateGroup(ctx context.Context, id string, upd GroupUpdate) (*models.FacebookGroup, error) {
	query := `
		UPDATE facebook_groups SET
			name = COALESCE($2, name),
			member_count = COALESCE($3, member_count),
			is_active = COALESCE($4, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + groupColumns
	group, err := scanGroup(r.db.QueryRow(ctx, query, id, upd.Name, upd.MemberCount, upd.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, auctionerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update facebook group: %w", err)
	}
	return group, nil
}
