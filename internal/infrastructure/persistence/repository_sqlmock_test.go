package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// These tests pin the PostgreSQL statements of the small repositories; the
// SQLite tests cover behaviour.

func TestGormModeRepository_FindAll_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"mode_id", "mode_name"}).
		AddRow(0, "Tram, Streetcar, Light rail").
		AddRow(3, "Bus")
	mock.ExpectQuery(`SELECT \* FROM "mode_lookup_table" ORDER BY mode_id ASC`).
		WillReturnRows(rows)

	modes, err := NewGormModeRepository(db.DB).FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.Equal(t, 3, modes[1].ID)
	assert.Equal(t, "Bus", modes[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDataSelectorRepository_FindByNameAndNumber_Postgres(t *testing.T) {
	columns := []string{"id", "created_at", "updated_at", "name", "number_to_review"}

	t.Run("with number", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		id := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "data_selectors" WHERE name = \$1 AND number_to_review = \$2 ORDER BY .* LIMIT .*`).
			WithArgs("Number", 5, 1).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id, now, now, "Number", 5))

		number := 5
		selector, err := NewGormDataSelectorRepository(db.DB).FindByNameAndNumber(context.Background(), category.DataSelectorNumber, &number)

		require.NoError(t, err)
		assert.Equal(t, id, selector.ID)
		assert.Equal(t, category.DataSelectorNumber, selector.Name)
		require.NotNil(t, selector.NumberToReview)
		assert.Equal(t, 5, *selector.NumberToReview)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without number", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "data_selectors" WHERE name = \$1 AND number_to_review IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(string(category.DataSelectorLog), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		selector, err := NewGormDataSelectorRepository(db.DB).FindByNameAndNumber(context.Background(), category.DataSelectorLog, nil)

		assert.Nil(t, selector)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "data_selectors"`).
			WillReturnError(errors.New("connection reset"))

		_, err := NewGormDataSelectorRepository(db.DB).FindByNameAndNumber(context.Background(), category.DataSelectorLog, nil)

		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}
