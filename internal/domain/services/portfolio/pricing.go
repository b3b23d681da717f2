package portfolio

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/pkg/metrics"
	"github.com/foliolink/folio_service/pkg/sanitize"
)

type quoteResult struct {
	quote *entities.Quote
	err   error
}

// fetchQuotes fans out one lookup per unique ticker. Each lookup gets
// its own timeout; a slow or failing ticker never delays the others
// beyond that bound. The map always has an entry per requested ticker.
func (s *Service) fetchQuotes(ctx context.Context, tickers []string) map[string]quoteResult {
	results := make(map[string]quoteResult, len(tickers))
	seen := make(map[string]bool, len(tickers))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ticker := range tickers {
		if seen[ticker] {
			continue
		}
		seen[ticker] = true

		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			qctx, cancel := context.WithTimeout(ctx, s.cfg.QuoteTimeout)
			defer cancel()

			q, err := s.market.Quote(qctx, ticker)
			if err != nil {
				s.logger.Warn("quote lookup failed",
					zap.String("ticker", sanitize.LogString(ticker)),
					zap.Error(err))
			}

			mu.Lock()
			results[ticker] = quoteResult{quote: q, err: err}
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()
	return results
}

// EnrichHoldings decorates holdings with quote data. Lookups run
// concurrently and the response waits for all to settle; a failed
// lookup yields a zero placeholder for that holding only.
func (s *Service) EnrichHoldings(ctx context.Context, holdings []entities.Holding) ([]entities.PricedHolding, map[string]entities.Quote) {
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}
	results := s.fetchQuotes(ctx, tickers)

	priced := make([]entities.PricedHolding, 0, len(holdings))
	quotes := make(map[string]entities.Quote, len(results))

	for _, h := range holdings {
		ph := entities.PricedHolding{Holding: h}
		res := results[h.Ticker]

		if res.err != nil || res.quote == nil {
			metrics.QuoteLookupsTotal.WithLabelValues("placeholder").Inc()
			ph.CurrentPrice = decimal.Zero
			ph.Change = decimal.Zero
			ph.ChangePercent = decimal.Zero
			ph.TotalValue = decimal.Zero
			if res.err != nil {
				ph.PriceError = res.err.Error()
			} else {
				ph.PriceError = "price not found"
			}
		} else {
			q := res.quote
			ph.CurrentPrice = q.CurrentPrice
			ph.Change = q.Change
			ph.ChangePercent = q.ChangePercent
			ph.TotalValue = q.CurrentPrice.Mul(h.Quantity).Round(2)
			quotes[h.Ticker] = *q
		}

		priced = append(priced, ph)
	}

	return priced, quotes
}

// BulkQuotes serves the standalone bulk price endpoint: one best-effort
// result per requested ticker, failures carried inline.
func (s *Service) BulkQuotes(ctx context.Context, tickers []string) []entities.BulkPriceResult {
	normalized := make([]string, 0, len(tickers))
	for _, t := range tickers {
		h := entities.Holding{Ticker: t}
		if h.Blank() {
			continue
		}
		normalized = append(normalized, h.Normalize().Ticker)
	}

	results := s.fetchQuotes(ctx, normalized)

	out := make([]entities.BulkPriceResult, 0, len(normalized))
	for _, ticker := range normalized {
		res := results[ticker]
		r := entities.BulkPriceResult{Ticker: ticker}

		if res.err != nil || res.quote == nil {
			r.Success = false
			if res.err != nil {
				r.Error = res.err.Error()
			} else {
				r.Error = "price not found"
			}
		} else {
			r.Success = true
			r.CurrentPrice = res.quote.CurrentPrice
			r.Change = res.quote.Change
			r.ChangePercent = res.quote.ChangePercent
		}
		out = append(out, r)
	}
	return out
}
