package portfolio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/infrastructure/store"
	apperrors "github.com/foliolink/folio_service/pkg/errors"
)

// fakeMarket serves canned quotes and fails for everything else.
type fakeMarket struct {
	quotes map[string]*entities.Quote
}

func (m *fakeMarket) Quote(ctx context.Context, ticker string) (*entities.Quote, error) {
	if q, ok := m.quotes[ticker]; ok {
		return q, nil
	}
	return nil, errors.New("quote source unavailable")
}

func newTestService(t *testing.T, market *fakeMarket) *Service {
	t.Helper()
	if market == nil {
		market = &fakeMarket{}
	}
	return NewService(
		store.NewTieredStore(store.NewMemoryBackend(), store.NewMemoryBackend(), zaptest.NewLogger(t)),
		market,
		Config{BaseURL: "https://folio.example.com", QuoteTimeout: time.Second},
		zaptest.NewLogger(t),
	)
}

func createRequest() entities.CreateRequest {
	return entities.CreateRequest{
		Holdings: []entities.Holding{
			{Ticker: "AAPL", Quantity: decimal.NewFromInt(10), Category: "Tech"},
			{Ticker: "btc-usd", Quantity: decimal.NewFromFloat(0.5), Category: "Crypto"},
		},
		Categories: map[string]entities.Category{
			"Tech":   {Color: "#4287f5"},
			"Crypto": {Color: "#f5a442"},
		},
		CategoryOrder: []string{"Tech", "Crypto"},
		Duration:      entities.DurationForever,
	}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	fe, ok := apperrors.AsFolioError(err)
	require.True(t, ok, "expected FolioError, got %v", err)
	assert.Equal(t, code, fe.Code)
}

func TestService_CreateThenView(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "https://folio.example.com/view/"+created.ID, created.ViewURL)
	assert.True(t, strings.HasPrefix(created.EditURL, "https://folio.example.com/edit/"+created.ID+"/"))

	view, err := s.View(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)
	assert.Len(t, view.Holdings, 2)
	assert.Equal(t, "BTC-USD", view.Holdings[1].Ticker, "tickers are upper-cased at write time")
	assert.Equal(t, []string{"Tech", "Crypto"}, view.CategoryOrder)
}

func TestService_CreateStripsBlankTickers(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), entities.CreateRequest{
		Holdings: []entities.Holding{
			{Ticker: "", Quantity: decimal.NewFromInt(5)},
			{Ticker: "   ", Quantity: decimal.NewFromInt(3)},
			{Ticker: "AAPL", Quantity: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	view, err := s.View(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Ticker)
	assert.True(t, view.Holdings[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestService_CreateEmptyHoldingsIsValid(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), entities.CreateRequest{Holdings: []entities.Holding{}})
	require.NoError(t, err)

	view, err := s.View(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Holdings)
}

func TestService_CreateMissingHoldings(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Create(context.Background(), entities.CreateRequest{Holdings: nil})
	assertCode(t, err, apperrors.ErrCodeMissingField)
}

func TestService_ViewUnknownID(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.View(context.Background(), "does-not-exist")
	assertCode(t, err, apperrors.ErrCodePortfolioNotFound)
}

func TestService_LazyExpiry(t *testing.T) {
	s := newTestService(t, nil)

	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return createdAt }

	req := createRequest()
	req.Duration = entities.Duration1Day
	created, err := s.Create(context.Background(), req)
	require.NoError(t, err)

	// Still live 23 hours in.
	s.now = func() time.Time { return createdAt.Add(23 * time.Hour) }
	_, err = s.View(context.Background(), created.ID)
	require.NoError(t, err)

	// Gone at 25 hours, indistinguishable from absence.
	s.now = func() time.Time { return createdAt.Add(25 * time.Hour) }
	_, err = s.View(context.Background(), created.ID)
	assertCode(t, err, apperrors.ErrCodePortfolioNotFound)

	// The lazy delete stuck: still gone when the clock rolls back.
	s.now = func() time.Time { return createdAt }
	_, err = s.View(context.Background(), created.ID)
	assertCode(t, err, apperrors.ErrCodePortfolioNotFound)
}

func TestService_ForeverNeverExpires(t *testing.T) {
	s := newTestService(t, nil)

	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return createdAt }

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)

	s.now = func() time.Time { return createdAt.AddDate(10, 0, 0) }
	view, err := s.View(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ExpiresAt)
}

func TestService_EditLoadRequiresSecret(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)
	secret := editSecretFromURL(t, created.EditURL)

	got, err := s.EditLoad(context.Background(), created.ID, secret)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Len(t, got.Holdings, 2)

	_, err = s.EditLoad(context.Background(), created.ID, "wrong-secret")
	assertCode(t, err, apperrors.ErrCodeForbidden)

	_, err = s.EditLoad(context.Background(), created.ID, "")
	assertCode(t, err, apperrors.ErrCodeMissingField)

	_, err = s.EditLoad(context.Background(), "missing-id", secret)
	assertCode(t, err, apperrors.ErrCodePortfolioNotFound)
}

func TestService_UpdateWrongSecretNeverMutates(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = s.Update(context.Background(), created.ID, "wrong-secret", entities.UpdateRequest{
		Holdings: []entities.Holding{{Ticker: "EVIL", Quantity: decimal.NewFromInt(1)}},
	})
	assertCode(t, err, apperrors.ErrCodeForbidden)

	view, err := s.View(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, view.Holdings, 2)
	assert.Equal(t, "AAPL", view.Holdings[0].Ticker)
}

func TestService_UpdateReplacesWholesale(t *testing.T) {
	s := newTestService(t, nil)

	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return createdAt }

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)
	secret := editSecretFromURL(t, created.EditURL)

	updatedAt := createdAt.Add(time.Hour)
	s.now = func() time.Time { return updatedAt }

	resp, err := s.Update(context.Background(), created.ID, secret, entities.UpdateRequest{
		Holdings: []entities.Holding{
			{Ticker: "msft", Quantity: decimal.NewFromInt(7)},
			{Ticker: "", Quantity: decimal.NewFromInt(2)},
		},
		Categories:    map[string]entities.Category{"Core": {Color: "#ffffff"}},
		CategoryOrder: []string{"Core"},
		Duration:      entities.Duration1Week,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ViewURL, resp.ViewURL)
	assert.Equal(t, created.EditURL, resp.EditURL)

	edit, err := s.EditLoad(context.Background(), created.ID, secret)
	require.NoError(t, err)
	require.Len(t, edit.Holdings, 1)
	assert.Equal(t, "MSFT", edit.Holdings[0].Ticker)
	assert.Equal(t, []string{"Core"}, edit.CategoryOrder)
	assert.Equal(t, entities.Duration1Week, edit.Duration)
	require.NotNil(t, edit.ExpiresAt)
	assert.True(t, edit.ExpiresAt.Equal(updatedAt.Add(7*24*time.Hour)), "expiry recomputed from update time")
	assert.True(t, edit.UpdatedAt.Equal(updatedAt))
}

func TestService_DeleteLifecycle(t *testing.T) {
	s := newTestService(t, nil)

	created, err := s.Create(context.Background(), createRequest())
	require.NoError(t, err)
	secret := editSecretFromURL(t, created.EditURL)

	_, err = s.Delete(context.Background(), created.ID, "wrong-secret")
	assertCode(t, err, apperrors.ErrCodeForbidden)

	ack, err := s.Delete(context.Background(), created.ID, secret)
	require.NoError(t, err)
	assert.True(t, ack.Success)

	_, err = s.View(context.Background(), created.ID)
	assertCode(t, err, apperrors.ErrCodePortfolioNotFound)
}

func TestService_PricesMixedOutcomes(t *testing.T) {
	market := &fakeMarket{quotes: map[string]*entities.Quote{
		"AAPL": {
			Ticker:        "AAPL",
			CurrentPrice:  decimal.NewFromFloat(150.00),
			Change:        decimal.NewFromFloat(1.25),
			ChangePercent: decimal.NewFromFloat(0.84),
		},
	}}
	s := newTestService(t, market)

	created, err := s.Create(context.Background(), entities.CreateRequest{
		Holdings: []entities.Holding{
			{Ticker: "AAPL", Quantity: decimal.NewFromInt(2)},
			{Ticker: "XYZ", Quantity: decimal.NewFromInt(4)},
		},
	})
	require.NoError(t, err)

	prices, err := s.Prices(context.Background(), created.ID)
	require.NoError(t, err, "per-ticker failure must not fail the response")
	require.Len(t, prices.Holdings, 2)

	aapl := prices.Holdings[0]
	assert.True(t, aapl.CurrentPrice.Equal(decimal.NewFromFloat(150.00)))
	assert.True(t, aapl.TotalValue.Equal(decimal.NewFromFloat(300.00)))
	assert.Empty(t, aapl.PriceError)

	xyz := prices.Holdings[1]
	assert.True(t, xyz.CurrentPrice.IsZero())
	assert.True(t, xyz.Change.IsZero())
	assert.True(t, xyz.ChangePercent.IsZero())
	assert.NotEmpty(t, xyz.PriceError)

	_, ok := prices.Prices["AAPL"]
	assert.True(t, ok)
	_, ok = prices.Prices["XYZ"]
	assert.False(t, ok)
}

func TestService_BulkQuotes(t *testing.T) {
	market := &fakeMarket{quotes: map[string]*entities.Quote{
		"AAPL": {Ticker: "AAPL", CurrentPrice: decimal.NewFromFloat(150.00)},
	}}
	s := newTestService(t, market)

	results := s.BulkQuotes(context.Background(), []string{"aapl", "XYZ", "  "})
	require.Len(t, results, 2)

	assert.Equal(t, "AAPL", results[0].Ticker)
	assert.True(t, results[0].Success)
	assert.True(t, results[0].CurrentPrice.Equal(decimal.NewFromFloat(150.00)))

	assert.Equal(t, "XYZ", results[1].Ticker)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
}

func editSecretFromURL(t *testing.T, editURL string) string {
	t.Helper()
	parts := strings.Split(editURL, "/")
	require.GreaterOrEqual(t, len(parts), 2)
	return parts[len(parts)-1]
}
