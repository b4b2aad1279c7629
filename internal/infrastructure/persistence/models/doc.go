// Package models holds the GORM rows behind the review domain. Each model
// converts to and from its domain type; the domain packages never see GORM
// tags. category.go covers fields, selectors and widgets; evaluation.go
// covers reviews, results and the mode lookup table.
package models
