package ports

import (
	"context"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ContactNotifier forwards accepted contact submissions to whoever reads them.
type ContactNotifier interface {
	PublishContact(ctx context.Context, msg *domain.ContactMessage) error
}
