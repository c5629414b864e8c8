package http

import (
	"context"

	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
)

// Pinger is a backing service /ready can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnChecker reports whether a long-lived connection is up.
type ConnChecker interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Crimes  *usecases.CrimeService
	Cities  *usecases.CityService
	Contact *usecases.ContactService

	// Optional backing services, nil when disabled.
	Cache Pinger
	NATS  ConnChecker

	// Production hides upstream error detail from clients.
	Production bool
	// BaseURL is the public origin used for sitemap links.
	BaseURL string
	Version string
}
