package search

import (
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

// Classification — результат разбора запроса на фасетные и свободные токены.
// Query хранит исходную строку целиком, она всегда уходит в нечёткий поиск.
type Classification struct {
	Query    string
	Types    []string
	Colors   []string
	FreeText []string
}

// HasTokens сообщает, что в запросе есть хотя бы один токен.
func (c Classification) HasTokens() bool {
	return len(c.Types)+len(c.Colors)+len(c.FreeText) > 0
}

// Classify делит запрос по пробелам и относит каждый токен к типу, цвету или свободному тексту.
// Тип проверяется раньше цвета, токен попадает только в одну категорию.
// Пустой запрос должен быть отклонён вызывающим.
func Classify(query string, facets domain.Facets) Classification {
	var (
		types  = facets.Values(domain.FacetItemType)
		colors = facets.Values(domain.FacetColors)
		res    = Classification{Query: query}
		seen   = make(map[string]struct{})
	)

	for _, token := range strings.Fields(query) {
		token = strings.ToLower(token)
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		switch {
		case types.Has(token):
			res.Types = append(res.Types, token)
		case colors.Has(token):
			res.Colors = append(res.Colors, token)
		default:
			res.FreeText = append(res.FreeText, token)
		}
	}

	return res
}
