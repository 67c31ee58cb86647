package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

const defaultMaterial = "unknown"

var numberPattern = regexp.MustCompile(`[\d.]+`)

// Metadata хранит содержимое metadata.txt. Первая непустая строка содержит название,
// остальные строки имеют вид "Material: wood".
type Metadata struct {
	Name     string
	Material string
	ItemType string
	Width    *float64
	Height   *float64
	Colors   []string
}

// ParseMetadata разбирает metadata.txt. Неизвестные строки игнорируются.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("metadata is empty")
	}

	m := &Metadata{
		Name:     lines[0],
		Material: defaultMaterial,
	}

	for _, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "Material:"):
			m.Material = strings.TrimSpace(strings.TrimPrefix(line, "Material:"))
		case strings.HasPrefix(line, "Item_Type:"):
			m.ItemType = strings.TrimSpace(strings.TrimPrefix(line, "Item_Type:"))
		case strings.HasPrefix(line, "Width"):
			m.Width = parseNumber(line)
		case strings.HasPrefix(line, "Height"):
			m.Height = parseNumber(line)
		case strings.HasPrefix(line, "Colors:"):
			m.Colors = domain.ParseColors(strings.TrimPrefix(line, "Colors:"))
		}
	}

	return m, nil
}

func parseNumber(line string) *float64 {
	raw := numberPattern.FindString(line)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	return &v
}

// Dimensions форматирует размеры как "120 x 80", либо только известную сторону.
func (m *Metadata) Dimensions() string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	switch {
	case m.Width != nil && m.Height != nil:
		return format(*m.Width) + " x " + format(*m.Height)
	case m.Width != nil:
		return "W " + format(*m.Width)
	case m.Height != nil:
		return "H " + format(*m.Height)
	default:
		return ""
	}
}

// Item собирает товар. Описание строится как "{материал} {тип}".
func (m *Metadata) Item(sku, imageKey string) *domain.Item {
	return domain.NewItem(domain.ItemParams{
		SKU:           sku,
		Name:          m.Name,
		MaterialValue: m.Material,
		ItemType:      m.ItemType,
		Colors:        m.Colors,
		Dimensions:    m.Dimensions(),
		ImagePath:     imageKey,
		MediaGallery:  []domain.MediaEntry{domain.NewPrimaryMedia(imageKey)},
	})
}
