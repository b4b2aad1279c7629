package gtfsfeed

import (
	"errors"
	"fmt"
	"strings"
)

// Feed errors
var (
	// ErrEmptyFile is returned when a table file has no content
	ErrEmptyFile = errors.New("table file is empty")

	// ErrInvalidEncoding is returned when a table file is not UTF-8
	ErrInvalidEncoding = errors.New("table file is not valid UTF-8")

	// ErrMissingHeader is returned when a table file has no header row
	ErrMissingHeader = errors.New("table file missing header row")

	// ErrInvalidArchive is returned when the upload is not a readable zip
	ErrInvalidArchive = errors.New("file is not a valid zip archive")

	// ErrNoFeedFiles is returned when the archive contains no .txt tables
	ErrNoFeedFiles = errors.New("archive contains no GTFS tables")

	// ErrArchiveTooLarge is returned when the extracted feed exceeds the limits
	ErrArchiveTooLarge = errors.New("archive exceeds maximum extracted size")

	// ErrTableNotPresent is returned when querying a table the feed lacks
	ErrTableNotPresent = errors.New("table not present in feed")
)

// MissingTablesError lists required tables absent from a feed
type MissingTablesError struct {
	Tables []string
}

func (e *MissingTablesError) Error() string {
	return fmt.Sprintf("feed is missing required tables: %s", strings.Join(e.Tables, ", "))
}

// TableError wraps a parsing failure with the table it occurred in
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s.txt: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}
