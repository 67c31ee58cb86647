package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "comma separated", raw: "Red, Blue", want: []string{"Red", "Blue"}},
		{name: "mixed separators", raw: "Red|Blue;Green", want: []string{"Red", "Blue", "Green"}},
		{name: "drops empty and duplicates", raw: " Red ,, Red ; ", want: []string{"Red"}},
		{name: "empty", raw: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColors(tt.raw))
		})
	}
}

func TestColorsRoundTrip(t *testing.T) {
	parsed := ParseColors("Red, Blue")
	assert.Equal(t, []string{"Red", "Blue"}, parsed)

	again := ParseColors(FormatColors(parsed))
	assert.Equal(t, parsed, again)
}

func TestNewItem_DescriptionDefault(t *testing.T) {
	item := NewItem(ItemParams{
		SKU:           " SKU-1 ",
		Name:          "Oslo",
		MaterialValue: "Oak",
		ItemType:      "Table",
		Colors:        []string{"Brown", " Brown", ""},
	})

	assert.Equal(t, "SKU-1", item.SKU)
	assert.Equal(t, "Oak Table", item.Description)
	assert.Equal(t, []string{"Brown"}, item.Colors)
	assert.True(t, item.ImageEmbedding.Empty())
	assert.True(t, item.TextEmbedding.Empty())
}

func TestNewItem_KeepsDescription(t *testing.T) {
	item := NewItem(ItemParams{SKU: "1", Name: "Oslo", Description: "Solid oak dining table"})
	assert.Equal(t, "Solid oak dining table", item.Description)
}

func TestDefaultDescription_FallsBackToName(t *testing.T) {
	assert.Equal(t, "Oslo", DefaultDescription("", "", "", "Oslo"))
	assert.Equal(t, "Oak", DefaultDescription("  ", "Oak", "", "Oslo"))
}

func TestItem_PrimaryImage(t *testing.T) {
	item := Item{MediaGallery: []MediaEntry{{File: "a.jpg", Disabled: true}, {File: "b.jpg"}}}
	assert.Equal(t, "b.jpg", item.PrimaryImage())

	item.ImagePath = "main.jpg"
	assert.Equal(t, "main.jpg", item.PrimaryImage())
}

func TestItem_Project(t *testing.T) {
	special := 9.5
	item := Item{
		SKU:            "S1",
		Name:           "Chair",
		ItemType:       "chair",
		Price:          10,
		SpecialPrice:   &special,
		ImageEmbedding: Vector{1, 2},
	}

	p := item.Project([]string{FieldItemName})
	assert.Equal(t, "S1", p.SKU)
	assert.Equal(t, "Chair", p.Name)
	assert.Empty(t, p.ItemType)
	assert.Zero(t, p.Price)
	assert.Nil(t, p.SpecialPrice)
	assert.True(t, p.ImageEmbedding.Empty())

	full := item.Project(nil)
	assert.Equal(t, "chair", full.ItemType)
	assert.Equal(t, &special, full.SpecialPrice)
	assert.True(t, full.ImageEmbedding.Empty())
}
