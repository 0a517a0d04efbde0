package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements()
	require.NotEmpty(t, stmts)
	for _, stmt := range stmts {
		assert.Regexp(t, `^CREATE (TABLE|INDEX) IF NOT EXISTS`, stmt)
	}
	assert.Contains(t, schemaSQL, "UNIQUE (user_id, post_id)")
	assert.Contains(t, schemaSQL, "root_comment_id TEXT REFERENCES comments(id) ON DELETE CASCADE")
}

func TestEnsureSchema(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	defer db.Close()

	stmts := SchemaStatements()
	mock.ExpectBegin()
	for range stmts {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_RollsBackOnFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
