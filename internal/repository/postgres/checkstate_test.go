package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjjwisniewski/seeker-functions/pkg/database"
)

func TestCheckStateRepository_List(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCheckStateRepository(mock)

	t1 := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT user_id, last_checked FROM user_check_state").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "last_checked"}).
			AddRow("user-1", t1).
			AddRow("user-2", t2))

	states, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "user-1", states[0].UserID)
	assert.Equal(t, t1, states[0].LastChecked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStateRepository_Upsert(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCheckStateRepository(mock)

	ts := time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO user_check_state .+ ON CONFLICT").
		WithArgs("user-1", ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), "user-1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStateRepository_Delete(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCheckStateRepository(mock)

	mock.ExpectExec("DELETE FROM user_check_state WHERE user_id").
		WithArgs("111222333").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "111222333"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStateRepository_Delete_AbsentRecord(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCheckStateRepository(mock)

	mock.ExpectExec("DELETE FROM user_check_state WHERE user_id").
		WithArgs("never-scanned").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "never-scanned"))
}
