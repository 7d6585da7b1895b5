package store

import (
	"context"
	"fmt"

	"github.com/swellyo/matching-platform/pkg/logger"
)

// Options selects and configures a store backend.
type Options struct {
	// Backend is one of "memory", "postgres", "nats".
	Backend     string
	DatabaseURL string
	NATS        NATSConfig
}

// New creates the configured store backend. An empty backend defaults to
// memory so local runs need no infrastructure.
func New(ctx context.Context, opts Options, log *logger.Logger) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case "nats":
		return NewNATSStore(ctx, opts.NATS, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
