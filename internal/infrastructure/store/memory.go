package store

import (
	"context"
	"sync"
	"time"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/repositories"
)

// MemoryBackend keeps portfolios in process memory. It is the fast
// primary tier in production and the whole store in ephemeral runs.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	portfolio *entities.Portfolio
	deadline  time.Time // zero means no native expiration
}

var _ repositories.Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]memoryRecord)}
}

func (b *MemoryBackend) Save(ctx context.Context, id string, p *entities.Portfolio, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := memoryRecord{portfolio: clone(p)}
	if ttl > 0 {
		rec.deadline = time.Now().Add(ttl)
	}
	b.records[id] = rec
	return nil
}

func (b *MemoryBackend) Get(ctx context.Context, id string) (*entities.Portfolio, error) {
	b.mu.RLock()
	rec, ok := b.records[id]
	b.mu.RUnlock()

	if !ok {
		return nil, repositories.ErrNotFound
	}
	if !rec.deadline.IsZero() && time.Now().After(rec.deadline) {
		b.mu.Lock()
		delete(b.records, id)
		b.mu.Unlock()
		return nil, repositories.ErrNotFound
	}
	return clone(rec.portfolio), nil
}

func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.records, id)
	return nil
}

// clone produces a deep copy so callers never share mutable state with
// the stored record.
func clone(p *entities.Portfolio) *entities.Portfolio {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Holdings = append([]entities.Holding(nil), p.Holdings...)
	cp.CategoryOrder = append([]string(nil), p.CategoryOrder...)
	if p.Categories != nil {
		cp.Categories = make(map[string]entities.Category, len(p.Categories))
		for k, v := range p.Categories {
			cp.Categories[k] = v
		}
	}
	if p.ExpiresAt != nil {
		at := *p.ExpiresAt
		cp.ExpiresAt = &at
	}
	return &cp
}
