package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      Data
	expiresAt time.Time
}

// InMemoryStore implements Store with a map. Sessions are lost on restart
// and not shared between instances.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore creates a store and starts its expiry loop
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	s := &InMemoryStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Load implements Store
func (s *InMemoryStore) Load(_ context.Context, id string) (*Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, ErrSessionNotFound
	}
	data := e.data
	data.Flashes = append([]Flash(nil), e.data.Flashes...)
	return &data, nil
}

// Save implements Store
func (s *InMemoryStore) Save(_ context.Context, id string, data *Data) error {
	stored := *data
	stored.Flashes = append([]Flash(nil), data.Flashes...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{data: stored, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Delete implements Store
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet
// collected
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the expiry loop
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryStore) removeExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
