package di

import (
	"fmt"
	"time"

	"github.com/foliolink/folio_service/internal/adapters/marketdata"
	"github.com/foliolink/folio_service/internal/domain/repositories"
	"github.com/foliolink/folio_service/internal/domain/services/portfolio"
	"github.com/foliolink/folio_service/internal/infrastructure/config"
	"github.com/foliolink/folio_service/internal/infrastructure/store"
	"github.com/foliolink/folio_service/pkg/health"
	"github.com/foliolink/folio_service/pkg/logger"
)

// Container holds all application dependencies, constructed once at
// startup and passed down explicitly. No package-level state.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Storage tiers
	Store repositories.PortfolioStore

	// External services
	MarketData *marketdata.Client

	// Domain services
	PortfolioService *portfolio.Service

	// Health
	HealthChecker *health.HealthChecker
}

// NewContainer wires the application. The in-process cache is always
// the primary tier; Redis or the record API (in that preference order)
// becomes the durable secondary tier when configured.
func NewContainer(cfg *config.Config, log *logger.Logger) (*Container, error) {
	checker := health.NewHealthChecker(10 * time.Second)

	primary := store.NewMemoryBackend()

	var secondary repositories.Backend
	switch {
	case cfg.Redis.Enabled:
		client, err := store.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect secondary store: %w", err)
		}
		secondary = store.NewRedisBackend(client)
		checker.Register(health.NewRedisChecker(client, 3*time.Second))
		log.Info("using Redis secondary store", "addr", cfg.Redis.Addr())
	case cfg.RecordAPI.URL != "":
		secondary = store.NewRecordAPIBackend(
			cfg.RecordAPI.URL,
			cfg.RecordAPI.APIKey,
			time.Duration(cfg.RecordAPI.Timeout)*time.Second,
		)
		checker.Register(health.NewExternalAPIChecker("record_api", cfg.RecordAPI.URL, 5*time.Second))
		log.Info("using record API secondary store", "url", cfg.RecordAPI.URL)
	default:
		log.Warn("no secondary store configured, portfolios are process-lifetime only")
	}

	tiered := store.NewTieredStore(primary, secondary, log.Zap())

	market := marketdata.NewClient(
		cfg.MarketData.BaseURL,
		time.Duration(cfg.MarketData.Timeout)*time.Second,
	)

	svc := portfolio.NewService(tiered, market, portfolio.Config{
		BaseURL:      cfg.Share.BaseURL,
		QuoteTimeout: time.Duration(cfg.MarketData.Timeout) * time.Second,
	}, log.Zap())

	return &Container{
		Config:           cfg,
		Logger:           log,
		Store:            tiered,
		MarketData:       market,
		PortfolioService: svc,
		HealthChecker:    checker,
	}, nil
}
