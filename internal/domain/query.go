package domain

// ClauseKind — тип клаузы гибридного запроса.
type ClauseKind string

const (
	ClauseCombinedFacet ClauseKind = "combined_facet"
	ClauseTypeFacet     ClauseKind = "type_facet"
	ClauseFuzzyText     ClauseKind = "fuzzy_text"
	ClauseColorFacet    ClauseKind = "color_facet"
)

// FuzzinessAuto — допустимое число правок зависит от длины терма.
const FuzzinessAuto = "AUTO"

// TermsMatch совпадает, если поле равно любому из термов.
type TermsMatch struct {
	Field FacetField
	Terms []string
}

type WeightedField struct {
	Name   string
	Weight float64
}

// FuzzyMatch описывает нечёткий поиск строки запроса по нескольким полям.
type FuzzyMatch struct {
	Query        string
	Fields       []WeightedField
	Fuzziness    string
	PrefixLength int
}

// Clause — одна клауза дизъюнкции. Для составной клаузы Must содержит все условия,
// которые должны совпасть одновременно.
type Clause struct {
	Kind  ClauseKind
	Boost float64
	Must  []TermsMatch
	Terms *TermsMatch
	Fuzzy *FuzzyMatch
}

// HybridQuery — описание запроса: дизъюнкция клауз, очки совпавших клауз суммируются.
type HybridQuery struct {
	Should             []Clause
	MinimumShouldMatch int
	Size               int
}

// Clause возвращает клаузу заданного типа.
func (q HybridQuery) Clause(kind ClauseKind) (Clause, bool) {
	for _, c := range q.Should {
		if c.Kind == kind {
			return c, true
		}
	}

	return Clause{}, false
}

// AutoEditDistance возвращает допустимое число правок для терма при fuzziness AUTO:
// 0 для термов короче 3 символов, 1 для 3..5, 2 для более длинных.
func AutoEditDistance(term string) int {
	n := len([]rune(term))
	switch {
	case n < 3:
		return 0
	case n < 6:
		return 1
	default:
		return 2
	}
}
