package category

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/gtfsreview/backend/internal/domain/shared"
)

// DataSelectorName identifies a sampling strategy
type DataSelectorName string

const (
	// DataSelectorLog samples ceil(log10(n) + 2) rows
	DataSelectorLog DataSelectorName = "log10(n) + 2"
	// DataSelectorNumber samples a fixed number of rows
	DataSelectorNumber DataSelectorName = "Number"
)

// IsValid reports whether the name is a known strategy
func (n DataSelectorName) IsValid() bool {
	return n == DataSelectorLog || n == DataSelectorNumber
}

// DataSelector decides how many rows of a table a reviewer grades.
// Selectors are shared between categories: the (name, number) pair is unique.
type DataSelector struct {
	shared.BaseEntity
	Name           DataSelectorName
	NumberToReview *int
}

// DataSelectorChoice describes a selectable strategy and whether it needs
// a number
type DataSelectorChoice struct {
	Name           DataSelectorName `json:"name"`
	RequiresNumber bool             `json:"requires_number"`
}

// ValidDataSelectorChoices lists the selectable strategies
func ValidDataSelectorChoices() []DataSelectorChoice {
	return []DataSelectorChoice{
		{Name: DataSelectorLog, RequiresNumber: false},
		{Name: DataSelectorNumber, RequiresNumber: true},
	}
}

// NewDataSelector creates a selector. The log strategy never stores a number.
func NewDataSelector(name DataSelectorName, number *int) (*DataSelector, error) {
	number, err := NormalizeDataSelector(name, number)
	if err != nil {
		return nil, err
	}
	return &DataSelector{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		NumberToReview: number,
	}, nil
}

// NormalizeDataSelector validates a (name, number) pair and returns the
// number as it is stored
func NormalizeDataSelector(name DataSelectorName, number *int) (*int, error) {
	switch name {
	case DataSelectorLog:
		return nil, nil
	case DataSelectorNumber:
		if number == nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Number to review is required for the Number selector")
		}
		if *number < 1 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Number to review must be at least 1")
		}
		n := *number
		return &n, nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown data selector: "+string(name))
	}
}

// Selector returns the sampling strategy for this data selector
func (d *DataSelector) Selector() Selector {
	if d == nil || d.Name == DataSelectorLog || d.NumberToReview == nil {
		return LogSelector{}
	}
	return FixedNumberSelector{Number: *d.NumberToReview}
}

// Selector computes how many of a population of rows are reviewed
type Selector interface {
	Count(population int) int
}

// LogSelector reviews ceil(log10(n) + 2) rows, never more than n
type LogSelector struct{}

// Count implements Selector
func (LogSelector) Count(population int) int {
	if population <= 0 {
		return 0
	}
	// the epsilon absorbs floating error at exact powers of ten
	count := int(math.Ceil(math.Log10(float64(population)) + 2 - 1e-9))
	return min(count, population)
}

// FixedNumberSelector reviews a fixed number of rows, never more than n
type FixedNumberSelector struct {
	Number int
}

// Count implements Selector
func (s FixedNumberSelector) Count(population int) int {
	if population <= 0 || s.Number <= 0 {
		return 0
	}
	return min(s.Number, population)
}

// Sample picks Count(population) distinct row indices uniformly at random
// and returns them in ascending order. A nil rng uses the global source.
func Sample(s Selector, population int, rng *rand.Rand) []int {
	k := s.Count(population)
	if k <= 0 {
		return nil
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	// Floyd's algorithm: k draws without materialising the population
	chosen := make(map[int]struct{}, k)
	for j := population - k; j < population; j++ {
		t := intN(j + 1)
		if _, taken := chosen[t]; taken {
			t = j
		}
		chosen[t] = struct{}{}
	}

	indices := make([]int, 0, k)
	for idx := range chosen {
		indices = append(indices, idx)
	}
	slices.Sort(indices)
	return indices
}
