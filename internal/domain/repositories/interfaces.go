package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/foliolink/folio_service/internal/domain/entities"
)

// ErrNotFound is returned by backends and stores when no record exists
// for the requested id. It is distinct from infrastructure failures.
var ErrNotFound = errors.New("portfolio not found")

// Backend is a single storage tier. Implementations must treat ttl as a
// hint: a zero ttl means no native expiration, and the record's own
// ExpiresAt field stays authoritative either way.
type Backend interface {
	Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error
	Get(ctx context.Context, id string) (*entities.Portfolio, error)
	Delete(ctx context.Context, id string) error
}

// PortfolioStore is the contract the service layer consumes. Callers
// never learn which tier served a record.
type PortfolioStore interface {
	Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error
	Get(ctx context.Context, id string) (*entities.Portfolio, error)
	Delete(ctx context.Context, id string) error
}

// MarketData is the external quote collaborator. Quote failures are
// expected and absorbed by callers into placeholder price data.
type MarketData interface {
	Quote(ctx context.Context, ticker string) (*entities.Quote, error)
}
