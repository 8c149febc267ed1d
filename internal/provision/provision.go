package provision

import (
	"log/slog"
	"time"
)

// Provisioner applies a Plan using the given service clients.
type Provisioner struct {
	clients *Clients
	logger  *slog.Logger

	// ActiveTimeout bounds the wait for a newly created function to become active.
	ActiveTimeout time.Duration
}

// New creates a Provisioner.
func New(clients *Clients, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		clients:       clients,
		logger:        logger.With("system", "provision"),
		ActiveTimeout: 2 * time.Minute,
	}
}
