package category

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSelector_Count(t *testing.T) {
	tests := []struct {
		population int
		want       int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{2, 2},
		{10, 3},
		{50, 4},
		{100, 4},
		{1000, 5},
		{5000, 6},
		{1_000_000, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogSelector{}.Count(tt.population), "population %d", tt.population)
	}
}

func TestFixedNumberSelector_Count(t *testing.T) {
	s := FixedNumberSelector{Number: 5}
	assert.Equal(t, 0, s.Count(0))
	assert.Equal(t, 3, s.Count(3))
	assert.Equal(t, 5, s.Count(5))
	assert.Equal(t, 5, s.Count(500))
	assert.Equal(t, 0, FixedNumberSelector{}.Count(10))
}

func TestNewDataSelector(t *testing.T) {
	t.Run("log selector drops the number", func(t *testing.T) {
		n := 7
		ds, err := NewDataSelector(DataSelectorLog, &n)
		require.NoError(t, err)
		assert.Nil(t, ds.NumberToReview)
		assert.Equal(t, LogSelector{}, ds.Selector())
	})

	t.Run("number selector requires a positive number", func(t *testing.T) {
		_, err := NewDataSelector(DataSelectorNumber, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		zero := 0
		_, err = NewDataSelector(DataSelectorNumber, &zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		n := 12
		ds, err := NewDataSelector(DataSelectorNumber, &n)
		require.NoError(t, err)
		assert.Equal(t, 12, *ds.NumberToReview)
		assert.Equal(t, FixedNumberSelector{Number: 12}, ds.Selector())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := NewDataSelector("sqrt(n)", nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("choices", func(t *testing.T) {
		choices := ValidDataSelectorChoices()
		require.Len(t, choices, 2)
		assert.False(t, choices[0].RequiresNumber)
		assert.True(t, choices[1].RequiresNumber)
	})
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("distinct sorted indices within range", func(t *testing.T) {
		for range 50 {
			indices := Sample(FixedNumberSelector{Number: 10}, 25, rng)
			require.Len(t, indices, 10)
			assert.True(t, slices.IsSorted(indices))
			assert.Len(t, slices.Compact(slices.Clone(indices)), 10)
			for _, idx := range indices {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, 25)
			}
		}
	})

	t.Run("whole population when count saturates", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2}, Sample(FixedNumberSelector{Number: 10}, 3, rng))
	})

	t.Run("empty population", func(t *testing.T) {
		assert.Empty(t, Sample(LogSelector{}, 0, rng))
	})

	t.Run("nil rng uses the global source", func(t *testing.T) {
		assert.Len(t, Sample(LogSelector{}, 100, nil), 4)
	})
}
