package gtfsfeed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is stripped from the start of table files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one record of a GTFS table keyed by column name
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value of a column, empty if absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// TableReader streams the rows of one GTFS table file
type TableReader struct {
	reader  *csv.Reader
	headers []string
	line    int
}

// NewTableReader validates the encoding, strips a BOM and reads the header
func NewTableReader(r io.Reader) (*TableReader, error) {
	buf := bufio.NewReader(r)

	head, err := buf.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	record, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make([]string, 0, len(record))
	for _, h := range record {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, ErrMissingHeader
	}

	return &TableReader{reader: cr, headers: headers, line: 1}, nil
}

// validateUTF8 checks the leading block of the file
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// a multi-byte rune may straddle the peek boundary
	if len(content) == checkSize {
		for i := 1; i < utf8.UTFMax && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// Headers returns the column names
func (t *TableReader) Headers() []string {
	return t.headers
}

// HasHeader reports whether a column exists
func (t *TableReader) HasHeader(name string) bool {
	for _, h := range t.headers {
		if h == name {
			return true
		}
	}
	return false
}

// ReadRow returns the next row or io.EOF
func (t *TableReader) ReadRow() (*Row, error) {
	record, err := t.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	t.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", t.line, err)
	}

	row := &Row{LineNumber: t.line, Data: make(map[string]string, len(t.headers))}
	for i, header := range t.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}
