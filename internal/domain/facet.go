package domain

import "time"

// FacetField — категориальное поле, значения которого используются для разбора запроса.
type FacetField string

const (
	FacetColors   FacetField = "colors"
	FacetItemType FacetField = "item_type"
)

// Поля словаря фасетов в порядке проверки токенов.
var AllFacetFields = []FacetField{FacetItemType, FacetColors}

// FacetValues — множество значений поля в нижнем регистре.
type FacetValues map[string]struct{}

// NewFacetValues строит множество из списка значений.
func NewFacetValues(values ...string) FacetValues {
	fv := make(FacetValues, len(values))
	for _, v := range values {
		fv[v] = struct{}{}
	}

	return fv
}

// Has проверяет наличие значения.
func (f FacetValues) Has(v string) bool {
	_, ok := f[v]
	return ok
}

// Facets — снимок словаря: поле -> множество значений.
type Facets map[FacetField]FacetValues

// Values возвращает множество значений поля; для отсутствующего поля пустое множество.
func (f Facets) Values(field FacetField) FacetValues {
	if v, ok := f[field]; ok {
		return v
	}

	return FacetValues{}
}

// FacetSnapshot — неизменяемый снимок словаря с временем обновления.
type FacetSnapshot struct {
	Facets      Facets
	RefreshedAt time.Time
}
