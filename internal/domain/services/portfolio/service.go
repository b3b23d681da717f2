package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
	"github.com/foliolink/folio_service/internal/domain/services/expiry"
	apperrors "github.com/foliolink/folio_service/pkg/errors"
	"github.com/foliolink/folio_service/pkg/metrics"
	"github.com/foliolink/folio_service/pkg/sanitize"
	"github.com/foliolink/folio_service/pkg/token"
)

// Config holds service-level settings
type Config struct {
	// BaseURL is the public origin embedded into view/edit links.
	BaseURL string
	// QuoteTimeout bounds each per-ticker price lookup.
	QuoteTimeout time.Duration
}

// Service orchestrates portfolio create/view/edit/delete requests. It
// owns identifier minting, expiration policy, and secret-based write
// authorization; storage and pricing are delegated.
type Service struct {
	store  repositories.PortfolioStore
	market repositories.MarketData
	cfg    Config
	logger *zap.Logger

	// now is the clock, injectable in tests.
	now func() time.Time
}

func NewService(store repositories.PortfolioStore, market repositories.MarketData, cfg Config, logger *zap.Logger) *Service {
	if cfg.QuoteTimeout == 0 {
		cfg.QuoteTimeout = 5 * time.Second
	}
	return &Service{
		store:  store,
		market: market,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Create mints a new portfolio and returns its shareable links. An
// empty holdings list is a valid degenerate portfolio.
func (s *Service) Create(ctx context.Context, req entities.CreateRequest) (*entities.CreateResponse, error) {
	if req.Holdings == nil {
		metrics.PortfolioOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, apperrors.New(apperrors.ErrCodeMissingField, "holdings list is required")
	}

	id, err := token.NewID()
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate portfolio id")
	}
	secret, err := token.NewEditSecret()
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate edit secret")
	}

	duration := req.Duration
	if duration == "" {
		duration = entities.DurationForever
	}

	now := s.now().UTC()
	p := &entities.Portfolio{
		ID:            id,
		EditSecret:    secret,
		Holdings:      cleanHoldings(req.Holdings),
		Categories:    req.Categories,
		CategoryOrder: req.CategoryOrder,
		Duration:      duration,
		Email:         sanitize.Email(req.Email),
		ExpiresAt:     expiry.ExpiresAt(duration, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Save(ctx, id, p, expiry.TTL(duration)); err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to persist portfolio")
	}

	s.logger.Info("portfolio created",
		zap.String("portfolio_id", id),
		zap.String("duration", duration),
		zap.Int("holdings", len(p.Holdings)))
	metrics.PortfolioOpsTotal.WithLabelValues("create", "ok").Inc()

	return &entities.CreateResponse{
		Success: true,
		ID:      id,
		ViewURL: s.viewURL(id),
		EditURL: s.editURL(id, secret),
	}, nil
}

// View returns the read-only payload. Expired portfolios are deleted on
// sight and reported as not found, indistinguishable from absence.
func (s *Service) View(ctx context.Context, id string) (*entities.ViewResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("view", outcomeLabel(err)).Inc()
		return nil, err
	}
	metrics.PortfolioOpsTotal.WithLabelValues("view", "ok").Inc()

	return &entities.ViewResponse{
		ID:            p.ID,
		Holdings:      p.Holdings,
		Categories:    p.Categories,
		CategoryOrder: p.CategoryOrder,
		Duration:      p.Duration,
		CreatedAt:     p.CreatedAt,
		ExpiresAt:     p.ExpiresAt,
	}, nil
}

// Prices returns the portfolio's holdings decorated with best-effort
// quote data. Per-ticker failures degrade to placeholders; the call as
// a whole only fails when the portfolio itself is gone.
func (s *Service) Prices(ctx context.Context, id string) (*entities.PricesResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("prices", outcomeLabel(err)).Inc()
		return nil, err
	}
	metrics.PortfolioOpsTotal.WithLabelValues("prices", "ok").Inc()

	priced, quotes := s.EnrichHoldings(ctx, p.Holdings)
	return &entities.PricesResponse{Holdings: priced, Prices: quotes}, nil
}

// EditLoad returns the full record for editing. The caller must present
// the matching edit secret; a mismatch on a live record is forbidden,
// distinct from not found.
func (s *Service) EditLoad(ctx context.Context, id, secret string) (*entities.EditResponse, error) {
	p, err := s.authorize(ctx, id, secret)
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("edit_load", outcomeLabel(err)).Inc()
		return nil, err
	}
	metrics.PortfolioOpsTotal.WithLabelValues("edit_load", "ok").Inc()

	return &entities.EditResponse{
		ID:            p.ID,
		Holdings:      p.Holdings,
		Categories:    p.Categories,
		CategoryOrder: p.CategoryOrder,
		Duration:      p.Duration,
		Email:         p.Email,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		ExpiresAt:     p.ExpiresAt,
	}, nil
}

// Update replaces the mutable fields wholesale and recomputes expiry
// from the new duration. Concurrent updates to the same id race; the
// last writer wins — there is no optimistic-concurrency token.
func (s *Service) Update(ctx context.Context, id, secret string, req entities.UpdateRequest) (*entities.UpdateResponse, error) {
	p, err := s.authorize(ctx, id, secret)
	if err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("update", outcomeLabel(err)).Inc()
		return nil, err
	}

	duration := req.Duration
	if duration == "" {
		duration = entities.DurationForever
	}

	now := s.now().UTC()
	p.Holdings = cleanHoldings(req.Holdings)
	p.Categories = req.Categories
	p.CategoryOrder = req.CategoryOrder
	p.Duration = duration
	p.ExpiresAt = expiry.ExpiresAt(duration, now)
	p.UpdatedAt = now
	if req.Email != "" {
		p.Email = sanitize.Email(req.Email)
	}

	if err := s.store.Save(ctx, id, p, expiry.TTL(duration)); err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("update", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to persist portfolio")
	}

	s.logger.Info("portfolio updated",
		zap.String("portfolio_id", id),
		zap.Int("holdings", len(p.Holdings)))
	metrics.PortfolioOpsTotal.WithLabelValues("update", "ok").Inc()

	return &entities.UpdateResponse{
		Success: true,
		ViewURL: s.viewURL(id),
		EditURL: s.editURL(id, secret),
	}, nil
}

// Delete removes the portfolio from every tier after verifying the
// edit secret.
func (s *Service) Delete(ctx context.Context, id, secret string) (*entities.DeleteResponse, error) {
	if _, err := s.authorize(ctx, id, secret); err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("delete", outcomeLabel(err)).Inc()
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		metrics.PortfolioOpsTotal.WithLabelValues("delete", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to delete portfolio")
	}

	s.logger.Info("portfolio deleted", zap.String("portfolio_id", id))
	metrics.PortfolioOpsTotal.WithLabelValues("delete", "ok").Inc()
	return &entities.DeleteResponse{Success: true}, nil
}

// load fetches a live record, enforcing lazy expiry.
func (s *Service) load(ctx context.Context, id string) (*entities.Portfolio, error) {
	if id == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingField, "portfolio id is required")
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("portfolio")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to load portfolio")
	}

	if p.Expired(s.now()) {
		metrics.PortfoliosExpiredTotal.Inc()
		if err := s.store.Delete(ctx, id); err != nil {
			// The record still reads as gone; the next access retries
			// the cleanup.
			s.logger.Warn("failed to delete expired portfolio",
				zap.String("portfolio_id", id),
				zap.Error(err))
		}
		return nil, apperrors.NotFound("portfolio")
	}

	return p, nil
}

// authorize loads a live record and verifies the edit secret.
func (s *Service) authorize(ctx context.Context, id, secret string) (*entities.Portfolio, error) {
	if secret == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingField, "edit secret is required")
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !token.SecretsEqual(p.EditSecret, secret) {
		return nil, apperrors.Forbidden("invalid edit secret")
	}
	return p, nil
}

func (s *Service) viewURL(id string) string {
	return fmt.Sprintf("%s/view/%s", s.cfg.BaseURL, id)
}

func (s *Service) editURL(id, secret string) string {
	return fmt.Sprintf("%s/edit/%s/%s", s.cfg.BaseURL, id, secret)
}

// cleanHoldings drops blank-ticker holdings and normalizes the rest,
// preserving order.
func cleanHoldings(holdings []entities.Holding) []entities.Holding {
	cleaned := make([]entities.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.Blank() {
			continue
		}
		cleaned = append(cleaned, h.Normalize())
	}
	return cleaned
}

func outcomeLabel(err error) string {
	if fe, ok := apperrors.AsFolioError(err); ok {
		switch fe.Code {
		case apperrors.ErrCodePortfolioNotFound:
			return "not_found"
		case apperrors.ErrCodeForbidden:
			return "forbidden"
		}
	}
	return "error"
}
