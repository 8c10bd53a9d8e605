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

func TestCatalogRepository_FindByName(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	harvested := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM catalog_blueprints WHERE set_code = .+ AND name = .+ ORDER BY blueprint_id").
		WithArgs("4ebb", "Lightning Bolt").
		WillReturnRows(pgxmock.NewRows([]string{"set_code", "name", "collector_number", "blueprint_id", "harvested_at"}).
			AddRow("4ebb", "Lightning Bolt", "123", int64(10), harvested).
			AddRow("4ebb", "Lightning Bolt", "124", int64(11), harvested))

	entries, err := repo.FindByName(context.Background(), "4ebb", "Lightning Bolt")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(10), entries[0].BlueprintID)
	assert.Equal(t, int64(11), entries[1].BlueprintID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_FindByName_Empty(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM catalog_blueprints").
		WithArgs("xyz", "Unknown Card").
		WillReturnRows(pgxmock.NewRows([]string{"set_code", "name", "collector_number", "blueprint_id", "harvested_at"}))

	entries, err := repo.FindByName(context.Background(), "xyz", "Unknown Card")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
