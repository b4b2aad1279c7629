package evaluation

import "github.com/google/uuid"

// Position addresses one result: the n-th sampled row of a category
type Position struct {
	CategoryID uuid.UUID `json:"category_id"`
	Number     int       `json:"number"`
}

// CategoryProgress is the number of results a review holds for a category.
// Slices of it are in category order.
type CategoryProgress struct {
	CategoryID uuid.UUID
	Count      int
}

// FirstItem returns the first result of the first non-empty category
func FirstItem(categories []CategoryProgress) *Position {
	for _, c := range categories {
		if c.Count > 0 {
			return &Position{CategoryID: c.CategoryID, Number: 1}
		}
	}
	return nil
}

// NextItem moves to n+1 within the category, then to the first result of
// the next category. Nil at the end of the review.
func NextItem(pos Position, categories []CategoryProgress) *Position {
	idx := indexOf(categories, pos.CategoryID)
	if idx < 0 {
		return nil
	}
	if pos.Number < categories[idx].Count {
		return &Position{CategoryID: pos.CategoryID, Number: pos.Number + 1}
	}
	return FirstItem(categories[idx+1:])
}

// PreviousItem moves to n-1 within the category, then to the last result of
// the previous category. Nil at the start of the review.
func PreviousItem(pos Position, categories []CategoryProgress) *Position {
	idx := indexOf(categories, pos.CategoryID)
	if idx < 0 {
		return nil
	}
	if pos.Number > 1 {
		return &Position{CategoryID: pos.CategoryID, Number: pos.Number - 1}
	}
	for i := idx - 1; i >= 0; i-- {
		if categories[i].Count > 0 {
			return &Position{CategoryID: categories[i].CategoryID, Number: categories[i].Count}
		}
	}
	return nil
}

// CountFor returns the number of results of a category
func CountFor(categories []CategoryProgress, categoryID uuid.UUID) int {
	if idx := indexOf(categories, categoryID); idx >= 0 {
		return categories[idx].Count
	}
	return 0
}

func indexOf(categories []CategoryProgress, id uuid.UUID) int {
	for i, c := range categories {
		if c.CategoryID == id {
			return i
		}
	}
	return -1
}
