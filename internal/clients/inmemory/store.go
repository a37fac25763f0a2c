package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/gst-optimizer/internal/clients"
)

// Store is an in-memory implementation of clients.Repository.
// It is safe for concurrent use. Data is lost on service restart - for
// persistence, use a database-backed store.
type Store struct {
	mu      sync.RWMutex
	order   []string
	clients map[string]*clients.Client
}

// NewStore creates a new in-memory client store.
func NewStore() *Store {
	return &Store{
		clients: make(map[string]*clients.Client),
	}
}

// Add implements the Repository interface. It assigns an ID and creation
// time when unset and stores a copy to avoid external modifications.
func (s *Store) Add(ctx context.Context, c *clients.Client) error {
	if c == nil {
		return fmt.Errorf("client is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if _, exists := s.clients[c.ID]; exists {
		return fmt.Errorf("client already exists: %s", c.ID)
	}

	clientCopy := *c
	s.clients[c.ID] = &clientCopy
	s.order = append(s.order, c.ID)

	return nil
}

// List implements the Repository interface. It returns copies in insertion
// order.
func (s *Store) List(ctx context.Context) ([]*clients.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*clients.Client, 0, len(s.order))
	for _, id := range s.order {
		clientCopy := *s.clients[id]
		result = append(result, &clientCopy)
	}
	return result, nil
}
