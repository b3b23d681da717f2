// Package marketdata implements the external quote collaborator
// against a Yahoo-chart-style endpoint. Lookups are best-effort: the
// caller substitutes placeholder data when a quote fails.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
	"github.com/foliolink/folio_service/pkg/circuitbreaker"
	"github.com/foliolink/folio_service/pkg/metrics"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// ErrNoPriceData means the quote source answered but knows no price
// for the symbol, as opposed to being unreachable.
var ErrNoPriceData = errors.New("no price data found")

// tickerFormat is the permissive fallback used when the quote source is
// unreachable. It is a format check only, never authoritative.
var tickerFormat = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

var _ repositories.MarketData = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuitbreaker.New("marketdata", circuitbreaker.DefaultConfig()),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote fetches the current quote for one ticker. A missing or
// non-positive price is an error; callers decide how to degrade.
func (c *Client) Quote(ctx context.Context, ticker string) (*entities.Quote, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, ticker)
	})
	metrics.QuoteLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.QuoteLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.QuoteLookupsTotal.WithLabelValues("ok").Inc()
	return result.(*entities.Quote), nil
}

func (c *Client) fetch(ctx context.Context, ticker string) (*entities.Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s failed: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote source returned %d for %s", resp.StatusCode, ticker)
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", ticker, err)
	}

	if len(data.Chart.Result) == 0 || data.Chart.Result[0].Meta.RegularMarketPrice == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoPriceData, ticker)
	}

	meta := data.Chart.Result[0].Meta
	current := *meta.RegularMarketPrice
	if current <= 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoPriceData, ticker)
	}

	previous := current
	if meta.PreviousClose != nil && *meta.PreviousClose > 0 {
		previous = *meta.PreviousClose
	}

	change := current - previous
	changePercent := 0.0
	if previous > 0 {
		changePercent = change / previous * 100
	}

	return &entities.Quote{
		Ticker:        strings.ToUpper(ticker),
		CurrentPrice:  decimal.NewFromFloat(current).Round(2),
		Change:        decimal.NewFromFloat(change).Round(2),
		ChangePercent: decimal.NewFromFloat(changePercent).Round(2),
		PreviousClose: decimal.NewFromFloat(previous).Round(2),
	}, nil
}

// ValidateTicker checks a symbol against the quote source. When the
// source is unreachable the check degrades to the permissive format
// regex rather than failing the request.
func (c *Client) ValidateTicker(ctx context.Context, ticker string) entities.TickerValidation {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	v := entities.TickerValidation{Ticker: ticker, TickerUpper: upper}

	if !tickerFormat.MatchString(upper) {
		v.IsValid = false
		v.Source = "format"
		return v
	}

	_, err := c.Quote(ctx, upper)
	switch {
	case err == nil:
		v.IsValid = true
		v.Source = "quote"
	case errors.Is(err, ErrNoPriceData):
		// Source answered and knows no such symbol.
		v.IsValid = false
		v.Source = "quote"
	default:
		// Source unreachable: fall back to the format check and accept.
		v.IsValid = true
		v.Source = "format"
	}
	return v
}
