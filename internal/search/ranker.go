package search

import (
	"sort"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

// RankerConfig — параметры фильтрации векторной выдачи.
type RankerConfig struct {
	MinScore            float64
	CandidateMultiplier int
	MinCandidates       int
}

func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		MinScore:            0.7,
		CandidateMultiplier: 10,
		MinCandidates:       100,
	}
}

// Ranker отсекает кандидатов ниже порога схожести, сортирует и обрезает до k.
type Ranker struct {
	cfg RankerConfig
}

func NewRanker(cfg RankerConfig) *Ranker {
	def := DefaultRankerConfig()
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = def.CandidateMultiplier
	}
	if cfg.MinCandidates <= 0 {
		cfg.MinCandidates = def.MinCandidates
	}

	return &Ranker{cfg: cfg}
}

// CandidateCount возвращает, сколько кандидатов запросить у индекса для итоговых k.
func (r *Ranker) CandidateCount(k int) int {
	return max(r.cfg.MinCandidates, k*r.cfg.CandidateMultiplier)
}

// MinScore возвращает текущий порог.
func (r *Ranker) MinScore() float64 {
	return r.cfg.MinScore
}

// Rank применяет жёсткий порог, сортирует по убыванию очков и оставляет не больше k.
// Если кандидаты были, но порог не прошёл ни один, выставляется NoConfidentMatch.
func (r *Ranker) Rank(candidates []domain.Hit, k int) domain.SearchResult {
	kept := make([]domain.Hit, 0, min(len(candidates), max(k, 0)))
	for _, h := range candidates {
		if h.Score >= r.cfg.MinScore {
			kept = append(kept, h)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Item.SKU < kept[j].Item.SKU
	})

	if k >= 0 && len(kept) > k {
		kept = kept[:k]
	}

	return domain.SearchResult{
		Hits:             kept,
		Candidates:       len(candidates),
		NoConfidentMatch: len(candidates) > 0 && len(kept) == 0,
	}
}
