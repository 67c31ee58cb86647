package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// TermsAggregator возвращает различные значения категориальных полей из живого индекса.
type TermsAggregator interface {
	AggregateTerms(ctx context.Context, fields []domain.FacetField, limit int) (map[domain.FacetField][]string, error)
}

// FacetDictionary кэширует значения фасетов с TTL.
// Обновление синхронное и схлопывается через singleflight; при ошибке отдаётся последний удачный снимок.
type FacetDictionary struct {
	source TermsAggregator
	fields []domain.FacetField
	ttl    time.Duration
	limit  int
	logger logger.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot domain.FacetSnapshot
	group    singleflight.Group
}

const (
	refreshKey     = "facets"
	refreshTimeout = 10 * time.Second
)

func NewFacetDictionary(source TermsAggregator, ttl time.Duration, limit int, logger logger.Logger) *FacetDictionary {
	const (
		defaultTTL   = 300 * time.Second
		defaultLimit = 1000
	)

	if ttl <= 0 {
		ttl = defaultTTL
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	return &FacetDictionary{
		source: source,
		fields: domain.AllFacetFields,
		ttl:    ttl,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

// Get возвращает значения запрошенных полей, при необходимости обновив кэш.
func (d *FacetDictionary) Get(ctx context.Context, fields ...domain.FacetField) domain.Facets {
	snap := d.current()
	if d.stale(snap) {
		snap = d.refresh(ctx)
	}

	out := make(domain.Facets, len(fields))
	for _, f := range fields {
		out[f] = snap.Facets.Values(f)
	}

	return out
}

// Snapshot возвращает текущий снимок без обновления.
func (d *FacetDictionary) Snapshot() domain.FacetSnapshot {
	return d.current()
}

// Invalidate сбрасывает время обновления, следующий Get пойдёт в индекс.
func (d *FacetDictionary) Invalidate() {
	d.mu.Lock()
	d.snapshot.RefreshedAt = time.Time{}
	d.mu.Unlock()
}

func (d *FacetDictionary) current() domain.FacetSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snapshot
}

func (d *FacetDictionary) stale(snap domain.FacetSnapshot) bool {
	if len(snap.Facets) == 0 || snap.RefreshedAt.IsZero() {
		return true
	}

	return d.now().Sub(snap.RefreshedAt) > d.ttl
}

func (d *FacetDictionary) refresh(ctx context.Context) domain.FacetSnapshot {
	const op = "FacetDictionary.refresh"

	v, _, _ := d.group.Do(refreshKey, func() (any, error) {
		// Пока ждали блокировку, снимок мог обновить другой запрос.
		if snap := d.current(); !d.stale(snap) {
			return snap, nil
		}

		// Результат общий для всех ждущих: отмена запроса-лидера не должна его обрывать.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		terms, err := d.source.AggregateTerms(fetchCtx, d.fields, d.limit)
		if err != nil {
			d.logger.Warnf("%v", e.Wrap(op, e.Upstream(err)))
			return d.current(), nil
		}

		snap := domain.FacetSnapshot{
			Facets:      toFacets(terms),
			RefreshedAt: d.now(),
		}

		d.mu.Lock()
		d.snapshot = snap
		d.mu.Unlock()

		return snap, nil
	})

	return v.(domain.FacetSnapshot)
}

func toFacets(terms map[domain.FacetField][]string) domain.Facets {
	facets := make(domain.Facets, len(terms))
	for field, values := range terms {
		set := make(domain.FacetValues, len(values))
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			set[v] = struct{}{}
		}
		facets[field] = set
	}

	return facets
}
