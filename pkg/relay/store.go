package relay

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyStored is returned when a payload id is written twice.
	ErrAlreadyStored = errors.New("relay payload already stored")
	// ErrConsumed is returned when a payload is missing or was already
	// consumed.
	ErrConsumed = errors.New("relay payload not found or already consumed")
)

// Store keeps relay payloads between launch and re-entry. Payloads are
// write-once, read-once: Put rejects duplicates and Consume removes the
// payload it returns.
type Store interface {
	Put(ctx context.Context, payload Payload) error
	Consume(ctx context.Context, id string) (Payload, error)
}

// MemoryStore is the in-process store for hosts that are never torn
// down mid-flow.
type MemoryStore struct {
	mu       sync.Mutex
	payloads map[string]Payload
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: make(map[string]Payload)}
}

func (s *MemoryStore) Put(ctx context.Context, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payloads[payload.ID]; ok {
		return ErrAlreadyStored
	}
	s.payloads[payload.ID] = payload
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, id string) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.payloads[id]
	if !ok {
		return Payload{}, ErrConsumed
	}
	delete(s.payloads, id)
	return payload, nil
}
