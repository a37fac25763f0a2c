// Package clients holds the process-lifetime client registry. It is glue
// around the analysis core: the pipeline never touches it.
package clients

import (
	"context"
	"time"
)

// Client is one registered taxpayer.
type Client struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	GSTIN          string    `json:"gstin"`
	BusinessType   string    `json:"business_type"`
	AnnualTurnover float64   `json:"annual_turnover"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository is the injected registry collaborator. Implementations must be
// safe for concurrent use; the API serves requests in parallel.
type Repository interface {
	// Add stores a new client, assigning ID and CreatedAt when unset.
	Add(ctx context.Context, c *Client) error
	// List returns all clients in insertion order.
	List(ctx context.Context) ([]*Client, error)
}
