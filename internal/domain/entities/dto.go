package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequest is the body of POST /api/portfolios
type CreateRequest struct {
	Holdings      []Holding           `json:"holdings"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	Duration      string              `json:"duration"`
	Email         string              `json:"email"`
}

// UpdateRequest replaces the mutable fields wholesale
type UpdateRequest struct {
	Holdings      []Holding           `json:"holdings"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	Duration      string              `json:"duration"`
	Email         string              `json:"email"`
}

// CreateResponse returns the shareable links for a new portfolio
type CreateResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	ViewURL string `json:"viewUrl"`
	EditURL string `json:"editUrl"`
}

// UpdateResponse returns refreshed links after an authorized update
type UpdateResponse struct {
	Success bool   `json:"success"`
	ViewURL string `json:"viewUrl"`
	EditURL string `json:"editUrl"`
}

// ViewResponse is the read-only payload served to viewers. The edit
// secret and contact email are never included.
type ViewResponse struct {
	ID            string              `json:"id"`
	Holdings      []Holding           `json:"holdings"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	Duration      string              `json:"duration"`
	CreatedAt     time.Time           `json:"createdAt"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
}

// PricesResponse is the price-enriched holdings payload
type PricesResponse struct {
	Holdings []PricedHolding  `json:"holdings"`
	Prices   map[string]Quote `json:"prices"`
}

// EditResponse is the full record served to a caller holding the edit
// secret. The secret itself is not echoed back.
type EditResponse struct {
	ID            string              `json:"id"`
	Holdings      []Holding           `json:"holdings"`
	Categories    map[string]Category `json:"categories"`
	CategoryOrder []string            `json:"categoryOrder"`
	Duration      string              `json:"duration"`
	Email         string              `json:"email,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
}

// DeleteResponse acknowledges an authorized delete
type DeleteResponse struct {
	Success bool `json:"success"`
}

// BulkPricesRequest is the body of POST /api/prices
type BulkPricesRequest struct {
	Tickers []string `json:"tickers"`
}

// BulkPriceResult is one best-effort quote in a bulk response
type BulkPriceResult struct {
	Ticker        string          `json:"ticker"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
}

// BulkPricesResponse is the bulk quote payload
type BulkPricesResponse struct {
	Success bool              `json:"success"`
	Prices  []BulkPriceResult `json:"prices"`
}

// TickerValidation is the result of a best-effort ticker check
type TickerValidation struct {
	Ticker      string `json:"ticker"`
	TickerUpper string `json:"tickerUpper"`
	IsValid     bool   `json:"isValid"`
	Source      string `json:"source"` // "quote" when confirmed upstream, "format" when regex fallback
}

// ErrorResponse is the uniform error body for all endpoints
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
