package cart

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/babyland-store/babyland/internal/domain"
)

// Store is the durable cart store. Each call loads the session's snapshot,
// applies the mutation in memory, and writes a fresh snapshot back. Mutations
// never fail from the caller's point of view: the only fallible read is the
// snapshot parse on load, which falls back to an empty cart, and persistence
// errors are logged rather than returned.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Get restores the session's cart. A missing or unparseable snapshot yields
// an empty cart; the parse failure never reaches the caller.
func (s *Store) Get(ctx context.Context, sessionID string) *Cart {
	snapshot, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to load cart snapshot", "error", err, "session_id", sessionID)
		return &Cart{}
	}
	if snapshot == nil {
		return &Cart{}
	}

	var lines []Line
	if err := json.Unmarshal(snapshot, &lines); err != nil {
		s.logger.Error("discarding unparseable cart snapshot", "error", err, "session_id", sessionID)
		return &Cart{}
	}

	return &Cart{Lines: lines}
}

func (s *Store) Add(ctx context.Context, sessionID string, product domain.Product, quantity int) *Cart {
	c := s.Get(ctx, sessionID)
	c.Add(product, quantity)
	s.persist(ctx, sessionID, c)
	return c
}

func (s *Store) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) *Cart {
	c := s.Get(ctx, sessionID)
	c.SetQuantity(productID, quantity)
	s.persist(ctx, sessionID, c)
	return c
}

func (s *Store) Remove(ctx context.Context, sessionID, productID string) *Cart {
	c := s.Get(ctx, sessionID)
	c.Remove(productID)
	s.persist(ctx, sessionID, c)
	return c
}

// Clear empties the session's cart and drops its snapshot. Idempotent; called
// once per successful order submission.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	if err := s.storage.Delete(ctx, sessionID); err != nil {
		s.logger.Error("failed to delete cart snapshot", "error", err, "session_id", sessionID)
	}
}

func (s *Store) persist(ctx context.Context, sessionID string, c *Cart) {
	snapshot, err := json.Marshal(c.Lines)
	if err != nil {
		s.logger.Error("failed to serialize cart", "error", err, "session_id", sessionID)
		return
	}
	if err := s.storage.Save(ctx, sessionID, snapshot); err != nil {
		s.logger.Error("failed to save cart snapshot", "error", err, "session_id", sessionID)
	}
}
