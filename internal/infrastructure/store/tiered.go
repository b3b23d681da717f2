package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
	"github.com/foliolink/folio_service/pkg/metrics"
)

// TieredStore composes a fast primary backend with an optional durable
// secondary backend behind a single contract. Callers never branch on
// which tier served a record.
//
// Primary failures are treated as cache misses and the operation falls
// through to the secondary; secondary failures surface as storage
// errors. With no secondary configured the primary is the sole durable
// tier and its errors surface directly.
type TieredStore struct {
	primary   repositories.Backend
	secondary repositories.Backend // nil for single-tier runs
	logger    *zap.Logger

	// repopulateTimeout bounds the async cache refill after a
	// secondary hit.
	repopulateTimeout time.Duration
}

var _ repositories.PortfolioStore = (*TieredStore)(nil)

func NewTieredStore(primary, secondary repositories.Backend, logger *zap.Logger) *TieredStore {
	return &TieredStore{
		primary:           primary,
		secondary:         secondary,
		logger:            logger,
		repopulateTimeout: 5 * time.Second,
	}
}

func (s *TieredStore) Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error {
	primaryErr := s.primary.Save(ctx, id, p, ttl)
	if primaryErr != nil {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "save", "error").Inc()
		s.logger.Warn("primary backend save failed",
			zap.String("portfolio_id", id),
			zap.Error(primaryErr))
	} else {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "save", "ok").Inc()
	}

	if s.secondary == nil {
		return primaryErr
	}

	if err := s.secondary.Save(ctx, id, p, ttl); err != nil {
		metrics.StoreTierOpsTotal.WithLabelValues("secondary", "save", "error").Inc()
		return fmt.Errorf("secondary backend save failed: %w", err)
	}
	metrics.StoreTierOpsTotal.WithLabelValues("secondary", "save", "ok").Inc()
	return nil
}

func (s *TieredStore) Get(ctx context.Context, id string) (*entities.Portfolio, error) {
	p, primaryErr := s.primary.Get(ctx, id)
	if primaryErr == nil {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "get", "hit").Inc()
		return p, nil
	}

	if errors.Is(primaryErr, repositories.ErrNotFound) {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "get", "miss").Inc()
	} else {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "get", "error").Inc()
		s.logger.Warn("primary backend get failed, treating as miss",
			zap.String("portfolio_id", id),
			zap.Error(primaryErr))
	}

	if s.secondary == nil {
		return nil, primaryErr
	}

	p, err := s.secondary.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.StoreTierOpsTotal.WithLabelValues("secondary", "get", "miss").Inc()
			return nil, repositories.ErrNotFound
		}
		metrics.StoreTierOpsTotal.WithLabelValues("secondary", "get", "error").Inc()
		return nil, fmt.Errorf("secondary backend get failed: %w", err)
	}
	metrics.StoreTierOpsTotal.WithLabelValues("secondary", "get", "hit").Inc()

	s.repopulate(id, p)
	return p, nil
}

func (s *TieredStore) Delete(ctx context.Context, id string) error {
	if err := s.primary.Delete(ctx, id); err != nil {
		metrics.StoreTierOpsTotal.WithLabelValues("primary", "delete", "error").Inc()
		s.logger.Warn("primary backend delete failed",
			zap.String("portfolio_id", id),
			zap.Error(err))
		if s.secondary == nil {
			return err
		}
	}

	if s.secondary == nil {
		return nil
	}

	if err := s.secondary.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		metrics.StoreTierOpsTotal.WithLabelValues("secondary", "delete", "error").Inc()
		return fmt.Errorf("secondary backend delete failed: %w", err)
	}
	return nil
}

// repopulate refills the primary tier after a secondary hit
// (read-through caching). Runs off the request path; failure only
// costs the next read a fallthrough.
func (s *TieredStore) repopulate(id string, p *entities.Portfolio) {
	cached := clone(p)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.repopulateTimeout)
		defer cancel()

		if err := s.primary.Save(ctx, id, cached, remainingTTL(cached)); err != nil {
			s.logger.Warn("primary backend repopulate failed",
				zap.String("portfolio_id", id),
				zap.Error(err))
		}
	}()
}

// remainingTTL derives the native-expiration hint from the record's own
// expiry so a repopulated cache entry never outlives it.
func remainingTTL(p *entities.Portfolio) time.Duration {
	if p == nil || p.ExpiresAt == nil {
		return 0
	}
	left := time.Until(*p.ExpiresAt)
	if left <= 0 {
		return time.Second
	}
	return left
}
