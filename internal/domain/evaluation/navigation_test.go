package evaluation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigation(t *testing.T) {
	a, b, empty, c := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	categories := []CategoryProgress{
		{CategoryID: a, Count: 2},
		{CategoryID: b, Count: 3},
		{CategoryID: empty, Count: 0},
		{CategoryID: c, Count: 1},
	}

	t.Run("first item", func(t *testing.T) {
		first := FirstItem(categories)
		require.NotNil(t, first)
		assert.Equal(t, Position{CategoryID: a, Number: 1}, *first)
		assert.Nil(t, FirstItem(nil))
	})

	t.Run("next within category", func(t *testing.T) {
		next := NextItem(Position{CategoryID: a, Number: 1}, categories)
		assert.Equal(t, &Position{CategoryID: a, Number: 2}, next)
	})

	t.Run("next moves to following category", func(t *testing.T) {
		next := NextItem(Position{CategoryID: a, Number: 2}, categories)
		assert.Equal(t, &Position{CategoryID: b, Number: 1}, next)
	})

	t.Run("next skips empty categories", func(t *testing.T) {
		next := NextItem(Position{CategoryID: b, Number: 3}, categories)
		assert.Equal(t, &Position{CategoryID: c, Number: 1}, next)
	})

	t.Run("next at end is nil", func(t *testing.T) {
		assert.Nil(t, NextItem(Position{CategoryID: c, Number: 1}, categories))
	})

	t.Run("previous within category", func(t *testing.T) {
		prev := PreviousItem(Position{CategoryID: b, Number: 3}, categories)
		assert.Equal(t, &Position{CategoryID: b, Number: 2}, prev)
	})

	t.Run("previous moves to last item of preceding category", func(t *testing.T) {
		prev := PreviousItem(Position{CategoryID: c, Number: 1}, categories)
		assert.Equal(t, &Position{CategoryID: b, Number: 3}, prev)
	})

	t.Run("previous at start is nil", func(t *testing.T) {
		assert.Nil(t, PreviousItem(Position{CategoryID: a, Number: 1}, categories))
	})

	t.Run("unknown category", func(t *testing.T) {
		assert.Nil(t, NextItem(Position{CategoryID: uuid.New(), Number: 1}, categories))
		assert.Nil(t, PreviousItem(Position{CategoryID: uuid.New(), Number: 1}, categories))
		assert.Equal(t, 0, CountFor(categories, uuid.New()))
		assert.Equal(t, 3, CountFor(categories, b))
	})
}
