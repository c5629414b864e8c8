package ports

import (
	"context"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// CrimeSource fetches data from the upstream crime-data service.
type CrimeSource interface {
	// FetchDates returns the available reporting months, most recent first.
	FetchDates(ctx context.Context) ([]domain.AvailableDate, error)
	FetchCrimes(ctx context.Context, lat, lng float64, date domain.ReportingDate) ([]domain.CrimeRecord, error)
	FetchForces(ctx context.Context) ([]domain.ForceRecord, error)
}
