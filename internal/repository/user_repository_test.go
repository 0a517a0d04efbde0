package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"votist/internal/domain"
	"votist/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for repository testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

var userCols = []string{"id", "external_id", "email", "first_name", "last_name", "avatar_url", "is_admin", "created_at", "updated_at"}

func TestToDomainUser(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := &models.User{
		ID:         "user1",
		ExternalID: "user_2abc",
		Email:      "ada@example.com",
		FirstName:  sql.NullString{String: "Ada", Valid: true},
		AvatarURL:  sql.NullString{},
		IsAdmin:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	u := toDomainUser(m)
	require.NotNil(t, u)
	assert.Equal(t, "user_2abc", u.ExternalID)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "", u.AvatarURL)
	assert.True(t, u.IsAdmin)
	assert.Nil(t, toDomainUser(nil))

	back := fromDomainUser(u)
	assert.True(t, back.FirstName.Valid)
	assert.False(t, back.LastName.Valid)
	assert.Nil(t, fromDomainUser(nil))
}

func TestSQLXUserRepository_FindByExternalID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("u1", "ext-1", "a@example.com", "Ada", nil, nil, false, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE external_id = $1`)).
			WithArgs("ext-1").
			WillReturnRows(rows)

		user, err := repo.FindByExternalID(context.Background(), "ext-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Ada", user.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE external_id = $1`)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.FindByExternalID(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE external_id = $1`)).
			WithArgs("ext-1").
			WillReturnError(errors.New("connection reset"))

		user, err := repo.FindByExternalID(context.Background(), "ext-1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get user by external_id")
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLXUserRepository_GetByID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "ext-1", "a@example.com", nil, nil, nil, true, now, now))

	user, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_Upsert(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	in := &domain.User{ID: "new-id", ExternalID: "ext-1", Email: "a@example.com", FirstName: "Ada", IsAdmin: true}

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(external_id\) DO UPDATE SET .* RETURNING`).
		WithArgs("new-id", "ext-1", "a@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("existing-id", "ext-1", "a@example.com", "Ada", nil, nil, true, now, now))

	stored, err := repo.Upsert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "existing-id", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
