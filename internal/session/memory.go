package session

import (
	"context"
	"sync"
	"time"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
)

type memoryEntry struct {
	cart      model.Cart
	buyNow    *model.BuyNow
	expiresAt time.Time
}

// memoryStore keeps sessions in process memory. Entries expire ttl after
// their last write.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// NewMemoryStore creates an in-process session store.
func NewMemoryStore(ttl time.Duration, logger zerolog.Logger) Store {
	return newMemoryStore(ttl, time.Now, logger)
}

func newMemoryStore(ttl time.Duration, now func() time.Time, logger zerolog.Logger) *memoryStore {
	return &memoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     now,
		logger:  logger.With().Str("component", "session_memory").Logger(),
	}
}

// lookup returns the live entry for id, evicting it if expired. Callers hold mu.
func (s *memoryStore) lookup(id string) *memoryEntry {
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		s.logger.Debug().Str("session_id", id).Msg("session expired")
		return nil
	}
	return e
}

// touch returns the entry for id, creating it if needed, and extends its expiry.
func (s *memoryStore) touch(id string) *memoryEntry {
	e := s.lookup(id)
	if e == nil {
		e = &memoryEntry{}
		s.entries[id] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

func (s *memoryStore) GetCart(_ context.Context, id string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := model.Cart{}
	if e := s.lookup(id); e != nil {
		for k, v := range e.cart {
			cart[k] = v
		}
	}
	return cart, nil
}

func (s *memoryStore) SaveCart(_ context.Context, id string, cart model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(model.Cart, len(cart))
	for k, v := range cart {
		copied[k] = v
	}
	s.touch(id).cart = copied
	return nil
}

func (s *memoryStore) ClearCart(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.lookup(id); e != nil {
		e.cart = nil
	}
	return nil
}

func (s *memoryStore) GetBuyNow(_ context.Context, id string) (*model.BuyNow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	if e == nil || e.buyNow == nil {
		return nil, nil
	}
	payload := *e.buyNow
	return &payload, nil
}

func (s *memoryStore) SetBuyNow(_ context.Context, id string, payload *model.BuyNow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *payload
	s.touch(id).buyNow = &copied
	return nil
}

func (s *memoryStore) ClearBuyNow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.lookup(id); e != nil {
		e.buyNow = nil
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
