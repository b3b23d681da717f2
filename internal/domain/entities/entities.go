package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Duration selectors recorded at creation. Anything else falls back to
// DurationForever when computing expiry.
const (
	Duration1Day    = "1 Day"
	Duration1Week   = "1 Week"
	Duration1Month  = "1 Month"
	DurationForever = "Forever"
)

// Holding is a single position in a portfolio. Order within the owning
// portfolio is display-significant.
type Holding struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Category string          `json:"category,omitempty"`
}

// Normalize upper-cases the ticker and trims surrounding whitespace.
func (h Holding) Normalize() Holding {
	h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
	return h
}

// Blank reports whether the holding has an empty or whitespace-only ticker.
// Blank holdings are never persisted.
func (h Holding) Blank() bool {
	return strings.TrimSpace(h.Ticker) == ""
}

// Category holds display attributes for a category label
type Category struct {
	Color string `json:"color,omitempty"`
}

// Portfolio is the stored record. ExpiresAt nil means the portfolio
// never expires; expiry is enforced lazily at read time.
type Portfolio struct {
	ID            string              `json:"id"`
	EditSecret    string              `json:"editSecret"`
	Holdings      []Holding           `json:"holdings"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	Duration      string              `json:"duration"`
	Email         string              `json:"email,omitempty"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Expired reports whether the portfolio's expiry has passed at the
// given instant. Portfolios without an expiry never expire.
func (p *Portfolio) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Quote is a point-in-time market quote for one ticker
type Quote struct {
	Ticker        string          `json:"ticker"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	PreviousClose decimal.Decimal `json:"previousClose"`
}

// PricedHolding is a holding decorated with best-effort quote data.
// When the lookup fails the price fields are zero and PriceError carries
// the reason; the holding itself is still returned.
type PricedHolding struct {
	Holding
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	PriceError    string          `json:"priceError,omitempty"`
}
