package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
	"github.com/foliolink/folio_service/pkg/retry"
)

// RecordAPIBackend persists portfolios through a PostgREST-style record
// API (one row per portfolio: id + JSON document). Writes are keyed
// upserts, never whole-table rewrites. The API has no native TTL, so
// the ttl hint is ignored and expiry stays with the record itself.
type RecordAPIBackend struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	retryCfg   retry.Config
}

var _ repositories.Backend = (*RecordAPIBackend)(nil)

type recordAPIRow struct {
	ID        string              `json:"id"`
	Data      *entities.Portfolio `json:"data"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewRecordAPIBackend(baseURL, apiKey string, timeout time.Duration) *RecordAPIBackend {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RecordAPIBackend{
		baseURL:    baseURL,
		apiKey:     apiKey,
		table:      "portfolios",
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
	}
}

func (b *RecordAPIBackend) Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error {
	row := recordAPIRow{ID: id, Data: p, UpdatedAt: time.Now().UTC()}
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio %s: %w", id, err)
	}

	return retry.WithExponentialBackoff(ctx, b.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.tableURL(""), bytes.NewReader(body))
		if err != nil {
			return err
		}
		b.setHeaders(req)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &upstreamStatusError{status: resp.StatusCode, body: string(msg)}
		}
		return nil
	}, isTransient)
}

func (b *RecordAPIBackend) Get(ctx context.Context, id string) (*entities.Portfolio, error) {
	var rows []recordAPIRow

	err := retry.WithExponentialBackoff(ctx, b.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			b.tableURL("?id=eq."+url.QueryEscape(id)+"&select=id,data"), nil)
		if err != nil {
			return err
		}
		b.setHeaders(req)

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &upstreamStatusError{status: resp.StatusCode, body: string(msg)}
		}
		return json.NewDecoder(resp.Body).Decode(&rows)
	}, isTransient)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 || rows[0].Data == nil {
		return nil, repositories.ErrNotFound
	}
	return rows[0].Data, nil
}

func (b *RecordAPIBackend) Delete(ctx context.Context, id string) error {
	return retry.WithExponentialBackoff(ctx, b.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
			b.tableURL("?id=eq."+url.QueryEscape(id)), nil)
		if err != nil {
			return err
		}
		b.setHeaders(req)

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		// Deleting an absent row is not an error.
		if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &upstreamStatusError{status: resp.StatusCode, body: string(msg)}
		}
		return nil
	}, isTransient)
}

func (b *RecordAPIBackend) tableURL(query string) string {
	return b.baseURL + "/rest/v1/" + b.table + query
}

func (b *RecordAPIBackend) setHeaders(req *http.Request) {
	req.Header.Set("apikey", b.apiKey)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
}

type upstreamStatusError struct {
	status int
	body   string
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("record api returned %d: %s", e.status, e.body)
}

// isTransient retries network failures and server-side errors, but not
// client errors.
func isTransient(err error) bool {
	if se, ok := err.(*upstreamStatusError); ok {
		return se.status >= 500
	}
	return true
}
