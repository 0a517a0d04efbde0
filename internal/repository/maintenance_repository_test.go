package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLXMaintenanceRepository_ReconcileCounters(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXMaintenanceRepository(db)

	t.Run("ReportsDrift", func(t *testing.T) {
		mock.ExpectExec(`UPDATE poll_options o SET votes = c.n`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE polls p SET total_votes = c.n`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE posts p SET likes = c.n`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE comments cm SET likes = c.n`).WillReturnResult(sqlmock.NewResult(0, 3))

		drift, err := repo.ReconcileCounters(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), drift.PollOptions)
		assert.Equal(t, int64(1), drift.Polls)
		assert.Equal(t, int64(3), drift.CommentLikes)
		assert.Equal(t, int64(6), drift.Total())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StopsOnError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE poll_options o SET votes = c.n`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE polls p SET total_votes = c.n`).WillReturnError(errors.New("deadlock detected"))

		_, err := repo.ReconcileCounters(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poll total votes")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
