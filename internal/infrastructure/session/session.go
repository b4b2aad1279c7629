// Package session keeps per-browser state on the server: the location of
// the uploaded feed and the queue of flash messages.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session does not exist or expired
var ErrSessionNotFound = errors.New("session not found")

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown to the user on the next response
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Data is the server-side state of a session
type Data struct {
	FeedDir        string  `json:"gtfs_feed,omitempty"`
	FeedName       string  `json:"feed_name,omitempty"`
	FeedArchiveKey string  `json:"feed_archive_key,omitempty"`
	Flashes        []Flash `json:"flashes,omitempty"`
}

// HasFeed reports whether a feed has been uploaded in this session
func (d *Data) HasFeed() bool {
	return d.FeedDir != ""
}

// SetFeed records the uploaded feed
func (d *Data) SetFeed(dir, name, archiveKey string) {
	d.FeedDir = dir
	d.FeedName = name
	d.FeedArchiveKey = archiveKey
}

// ClearFeed forgets the uploaded feed
func (d *Data) ClearFeed() {
	d.SetFeed("", "", "")
}

// AddFlash queues a message
func (d *Data) AddFlash(level, message string) {
	d.Flashes = append(d.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns and clears the queued messages
func (d *Data) PopFlashes() []Flash {
	flashes := d.Flashes
	d.Flashes = nil
	return flashes
}

// Store persists session data by ID
type Store interface {
	// Load returns ErrSessionNotFound for unknown or expired sessions
	Load(ctx context.Context, id string) (*Data, error)
	// Save writes the data and refreshes the expiry
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a random, URL-safe session ID
func NewID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
