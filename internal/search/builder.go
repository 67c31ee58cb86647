package search

import (
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
)

// BuilderConfig задаёт бусты клауз и веса полей нечёткого поиска.
type BuilderConfig struct {
	CombinedBoost float64
	TypeBoost     float64
	FuzzyBoost    float64
	ColorBoost    float64
	FuzzyFields   []domain.WeightedField
	PrefixLength  int
}

// DefaultBuilderConfig: точные категориальные совпадения весят больше нечёткого текста,
// а запрос с типом и цветом сразу получает больше любого одиночного фасета.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		CombinedBoost: 10.0,
		TypeBoost:     6.0,
		FuzzyBoost:    3.0,
		ColorBoost:    1.0,
		FuzzyFields: []domain.WeightedField{
			{Name: domain.FieldItemName, Weight: 4},
			{Name: domain.FieldDescription, Weight: 3},
			{Name: domain.FieldMaterialValue, Weight: 2},
			{Name: domain.FieldDimensions, Weight: 1.5},
			{Name: domain.FieldSKU, Weight: 1},
		},
		PrefixLength: 2,
	}
}

// Builder собирает гибридный запрос из результата классификации.
type Builder struct {
	cfg BuilderConfig
}

func NewBuilder(cfg BuilderConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build возвращает дизъюнкцию клауз в порядке: тип+цвет, тип, нечёткий текст, цвет.
// Если найдены и тип, и цвет, одиночные фасетные клаузы не добавляются: их покрывает составная.
// Нечёткая клауза присутствует всегда, поэтому minimum_should_match = 1 выполнимо.
func (b *Builder) Build(c Classification, k int) (domain.HybridQuery, error) {
	const op = "Builder.Build"

	if !c.HasTokens() {
		return domain.HybridQuery{}, e.Wrap(op, e.ErrEmptyQuery)
	}
	if k <= 0 {
		return domain.HybridQuery{}, e.Wrap(op, e.ErrInvalidK)
	}

	should := make([]domain.Clause, 0, 3)
	combined := len(c.Types) > 0 && len(c.Colors) > 0

	if combined {
		should = append(should, domain.Clause{
			Kind:  domain.ClauseCombinedFacet,
			Boost: b.cfg.CombinedBoost,
			Must: []domain.TermsMatch{
				{Field: domain.FacetItemType, Terms: c.Types},
				{Field: domain.FacetColors, Terms: c.Colors},
			},
		})
	}

	if len(c.Types) > 0 && !combined {
		should = append(should, domain.Clause{
			Kind:  domain.ClauseTypeFacet,
			Boost: b.cfg.TypeBoost,
			Terms: &domain.TermsMatch{Field: domain.FacetItemType, Terms: c.Types},
		})
	}

	should = append(should, domain.Clause{
		Kind:  domain.ClauseFuzzyText,
		Boost: b.cfg.FuzzyBoost,
		Fuzzy: &domain.FuzzyMatch{
			Query:        c.Query,
			Fields:       b.cfg.FuzzyFields,
			Fuzziness:    domain.FuzzinessAuto,
			PrefixLength: b.cfg.PrefixLength,
		},
	})

	if len(c.Colors) > 0 && !combined {
		should = append(should, domain.Clause{
			Kind:  domain.ClauseColorFacet,
			Boost: b.cfg.ColorBoost,
			Terms: &domain.TermsMatch{Field: domain.FacetColors, Terms: c.Colors},
		})
	}

	return domain.HybridQuery{
		Should:             should,
		MinimumShouldMatch: 1,
		Size:               k,
	}, nil
}
