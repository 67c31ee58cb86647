package pgdb

import (
	"strings"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redSofaQuery() domain.HybridQuery {
	return domain.HybridQuery{
		Should: []domain.Clause{
			{
				Kind:  domain.ClauseCombinedFacet,
				Boost: 10,
				Must: []domain.TermsMatch{
					{Field: domain.FacetItemType, Terms: []string{"sofa"}},
					{Field: domain.FacetColors, Terms: []string{"red"}},
				},
			},
			{
				Kind:  domain.ClauseFuzzyText,
				Boost: 3,
				Fuzzy: &domain.FuzzyMatch{
					Query: "Red Sofa",
					Fields: []domain.WeightedField{
						{Name: domain.FieldItemName, Weight: 4},
						{Name: domain.FieldDimensions, Weight: 1.5},
					},
					Fuzziness:    domain.FuzzinessAuto,
					PrefixLength: 2,
				},
			},
		},
		MinimumShouldMatch: 1,
		Size:               5,
	}
}

func TestCompileHybrid_RedSofa(t *testing.T) {
	query, args, err := compileHybrid(redSofaQuery())
	require.NoError(t, err)

	// terms: sofa, red (combined), red, sofa (fuzzy tokens), msm, size
	require.Len(t, args, 6)
	assert.Equal(t, []string{"sofa"}, args[0])
	assert.Equal(t, []string{"red"}, args[1])
	assert.Equal(t, "red", args[2])
	assert.Equal(t, "sofa", args[3])
	assert.Equal(t, 1, args[4])
	assert.Equal(t, 5, args[5])

	assert.Contains(t, query, " AS c0")
	assert.Contains(t, query, " AS c1")
	assert.NotContains(t, query, " AS c2")
	assert.Contains(t, query, "THEN 20 ELSE 0 END")
	assert.Contains(t, query, "(3 * GREATEST(")
	assert.Contains(t, query, "4 * (")
	assert.Contains(t, query, "1.5 * (")
	assert.Contains(t, query, "levenshtein(w, $3) <= 1")
	assert.Contains(t, query, "left(w, 2) = left($4, 2)")
	assert.Contains(t, query, "LIMIT $6")
	assert.Contains(t, query, ">= $5")
	assert.Contains(t, query, "ORDER BY score DESC, sku")
}

func TestCompileHybrid_OnlyFuzzy(t *testing.T) {
	q := domain.HybridQuery{
		Should: []domain.Clause{{
			Kind:  domain.ClauseFuzzyText,
			Boost: 3,
			Fuzzy: &domain.FuzzyMatch{
				Query:        "oak wardrobe",
				Fields:       []domain.WeightedField{{Name: domain.FieldItemName, Weight: 4}},
				Fuzziness:    domain.FuzzinessAuto,
				PrefixLength: 2,
			},
		}},
		MinimumShouldMatch: 1,
		Size:               3,
	}

	query, args, err := compileHybrid(q)
	require.NoError(t, err)

	assert.NotContains(t, query, "GREATEST")
	assert.NotContains(t, query, "unnest(colors)")
	// "oak": одна правка, "wardrobe": две.
	assert.Contains(t, query, "levenshtein(w, $1) <= 1")
	assert.Contains(t, query, "levenshtein(w, $2) <= 2")
	assert.Contains(t, query, "/ 2.0")
	assert.Equal(t, []any{"oak", "wardrobe", 1, 3}, args)
}

func TestCompileHybrid_ShortTokensExact(t *testing.T) {
	q := domain.HybridQuery{
		Should: []domain.Clause{{
			Kind:  domain.ClauseFuzzyText,
			Boost: 3,
			Fuzzy: &domain.FuzzyMatch{
				Query:     "tv",
				Fields:    []domain.WeightedField{{Name: domain.FieldSKU, Weight: 1}},
				Fuzziness: domain.FuzzinessAuto,
			},
		}},
		Size: 1,
	}

	query, _, err := compileHybrid(q)
	require.NoError(t, err)
	assert.Contains(t, query, "levenshtein(w, $1) <= 0")
	assert.Contains(t, query, "left(w, 0)")
}

func TestCompileHybrid_LongTokensSkipLevenshtein(t *testing.T) {
	long := strings.Repeat("a", 300)
	q := domain.HybridQuery{
		Should: []domain.Clause{{
			Kind:  domain.ClauseFuzzyText,
			Boost: 3,
			Fuzzy: &domain.FuzzyMatch{
				Query:        long + " sofa",
				Fields:       []domain.WeightedField{{Name: domain.FieldItemName, Weight: 4}},
				Fuzziness:    domain.FuzzinessAuto,
				PrefixLength: 2,
			},
		}},
		Size: 1,
	}

	query, args, err := compileHybrid(q)
	require.NoError(t, err)
	assert.Equal(t, long, args[0])

	// Длинный токен сравнивается только на равенство.
	assert.NotContains(t, query, "levenshtein(w, $1)")
	assert.Contains(t, query, "WHERE w = $1")
	// Короткий токен защищён от длинных слов в колонке.
	assert.Contains(t, query, "CASE WHEN length(w) <= 255 THEN levenshtein(w, $2) <= 1 ELSE w = $2 END")
}

func TestCompileHybrid_Errors(t *testing.T) {
	_, _, err := compileHybrid(domain.HybridQuery{Size: 5})
	assert.ErrorIs(t, err, e.ErrEmptyQuery)

	q := redSofaQuery()
	q.Size = 0
	_, _, err = compileHybrid(q)
	assert.ErrorIs(t, err, e.ErrInvalidK)

	q = redSofaQuery()
	q.Should[1].Fuzzy.Fields = []domain.WeightedField{{Name: "price; DROP TABLE items", Weight: 1}}
	_, _, err = compileHybrid(q)
	assert.Error(t, err)

	q = redSofaQuery()
	q.Should[0].Must[0] = domain.TermsMatch{Field: "material", Terms: []string{"oak"}}
	_, _, err = compileHybrid(q)
	assert.Error(t, err)
}

func TestCompileHybrid_TermsLowercased(t *testing.T) {
	q := domain.HybridQuery{
		Should: []domain.Clause{{
			Kind:  domain.ClauseColorFacet,
			Boost: 1,
			Terms: &domain.TermsMatch{Field: domain.FacetColors, Terms: []string{"Red"}},
		}},
		Size: 2,
	}

	query, args, err := compileHybrid(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, args[0])
	assert.True(t, strings.Contains(query, "lower(c) = ANY($1::text[])"))
}
