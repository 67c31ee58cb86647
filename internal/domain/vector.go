package domain

import (
	"math"

	"github.com/DRSN-tech/furniture-search/pkg/e"
)

// Vector — плотный эмбеддинг фиксированной размерности. Пустой вектор означает отсутствие эмбеддинга.
type Vector []float32

// VectorField — имя векторного поля в индексе.
type VectorField string

const (
	ImageEmbeddingField VectorField = "image_embedding"
	TextEmbeddingField  VectorField = "text_embedding"
)

// ParseVectorField проверяет, что поле поддерживает KNN-поиск.
func ParseVectorField(s string) (VectorField, error) {
	switch VectorField(s) {
	case ImageEmbeddingField, TextEmbeddingField:
		return VectorField(s), nil
	default:
		return "", e.ErrUnsupportedVectorField
	}
}

// Empty сообщает, что эмбеддинг отсутствует.
func (v Vector) Empty() bool {
	return len(v) == 0
}

// Validate проверяет инвариант: вектор либо пуст, либо полной длины dim и без NaN/Inf.
func (v Vector) Validate(dim int) error {
	if v.Empty() {
		return nil
	}
	if len(v) != dim {
		return e.ErrVectorDimMismatch
	}
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return e.ErrVectorEmbeddingEmpty
		}
	}

	return nil
}

// Normalize возвращает копию вектора с единичной L2-нормой. Нулевой вектор возвращается как есть.
func (v Vector) Normalize() Vector {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return append(Vector(nil), v...)
	}

	norm := math.Sqrt(sum)
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}

	return out
}

// Float32 возвращает вектор как []float32 для клиентов хранилищ.
func (v Vector) Float32() []float32 {
	return []float32(v)
}
