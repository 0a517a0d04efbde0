package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"votist/internal/domain"
	"votist/internal/repository/models"
)

const userColumns = `id, external_id, email, first_name, last_name, avatar_url, is_admin, created_at, updated_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db DBTX
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db DBTX) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// FindByExternalID retrieves a user by the identity provider subject.
func (r *sqlxUserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &user, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by external_id: %w", err)
	}
	return toDomainUser(&user), nil
}

// GetByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&user), nil
}

// Upsert inserts the user or refreshes profile fields of the existing row
// with the same external id. The stored id is kept on conflict.
func (r *sqlxUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now()
	m := fromDomainUser(user)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			is_admin = EXCLUDED.is_admin,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns

	var stored models.User
	err := GetExecutor(ctx, r.db).GetContext(ctx, &stored, query,
		m.ID, m.ExternalID, m.Email, m.FirstName, m.LastName, m.AvatarURL, m.IsAdmin, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return toDomainUser(&stored), nil
}
