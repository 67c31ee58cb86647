package pgdb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
)

// Source-поля документа без эмбеддингов.
const itemColumns = `sku, item_name, material_value, item_type, colors, dimensions,
	price, special_price, final_price, description, image_path, media_gallery`

// textColumns — выражения для полнотекстовых полей документа.
var textColumns = map[string]string{
	domain.FieldSKU:           "sku",
	domain.FieldItemName:      "item_name",
	domain.FieldDescription:   "description",
	domain.FieldMaterialValue: "material_value",
	domain.FieldDimensions:    "dimensions",
	domain.FieldItemType:      "item_type",
	domain.FieldColors:        "array_to_string(colors, ' ')",
}

// sqlArgs собирает позиционные параметры запроса.
type sqlArgs struct {
	values []any
}

func (a *sqlArgs) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// compileHybrid переводит гибридный запрос в SQL.
// Каждое should-условие становится колонкой со своим вкладом в итоговую оценку;
// документ попадает в выдачу, если ненулевой вклад дали не меньше minimum_should_match условий.
func compileHybrid(q domain.HybridQuery) (string, []any, error) {
	if len(q.Should) == 0 {
		return "", nil, e.ErrEmptyQuery
	}
	if q.Size <= 0 {
		return "", nil, e.ErrInvalidK
	}

	args := &sqlArgs{}
	clauseCols := make([]string, 0, len(q.Should))
	names := make([]string, 0, len(q.Should))

	for i, c := range q.Should {
		expr, err := compileClause(c, args)
		if err != nil {
			return "", nil, err
		}

		name := "c" + strconv.Itoa(i)
		names = append(names, name)
		clauseCols = append(clauseCols, fmt.Sprintf("%s AS %s", expr, name))
	}

	matched := make([]string, 0, len(names))
	for _, n := range names {
		matched = append(matched, fmt.Sprintf("(CASE WHEN %s > 0 THEN 1 ELSE 0 END)", n))
	}

	msm := max(q.MinimumShouldMatch, 1)

	query := fmt.Sprintf(`
		SELECT %s, (%s) AS score
		FROM (
			SELECT %s,
				%s
			FROM items
		) scored
		WHERE %s >= %s
		ORDER BY score DESC, sku
		LIMIT %s`,
		itemColumns,
		strings.Join(names, " + "),
		itemColumns,
		strings.Join(clauseCols, ",\n\t\t\t\t"),
		strings.Join(matched, " + "),
		args.add(msm),
		args.add(q.Size),
	)

	return query, args.values, nil
}

func compileClause(c domain.Clause, args *sqlArgs) (string, error) {
	switch {
	case len(c.Must) > 0:
		conds := make([]string, 0, len(c.Must))
		for _, m := range c.Must {
			cond, err := compileTerms(m, args)
			if err != nil {
				return "", err
			}
			conds = append(conds, cond)
		}
		// Каждое терм-условие даёт константный вклад, как constant_score.
		return fmt.Sprintf("(CASE WHEN %s THEN %s ELSE 0 END)",
			strings.Join(conds, " AND "), formatFloat(c.Boost*float64(len(c.Must)))), nil

	case c.Terms != nil:
		cond, err := compileTerms(*c.Terms, args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(CASE WHEN %s THEN %s ELSE 0 END)", cond, formatFloat(c.Boost)), nil

	case c.Fuzzy != nil:
		return compileFuzzy(*c.Fuzzy, c.Boost, args)

	default:
		return "", fmt.Errorf("clause %q has no condition", c.Kind)
	}
}

func compileTerms(m domain.TermsMatch, args *sqlArgs) (string, error) {
	terms := make([]string, 0, len(m.Terms))
	for _, t := range m.Terms {
		terms = append(terms, strings.ToLower(t))
	}

	switch m.Field {
	case domain.FacetItemType:
		return fmt.Sprintf("lower(item_type) = ANY(%s::text[])", args.add(terms)), nil
	case domain.FacetColors:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(colors) AS c WHERE lower(c) = ANY(%s::text[]))", args.add(terms)), nil
	default:
		return "", fmt.Errorf("unsupported terms field %q", m.Field)
	}
}

// levenshtein() из fuzzystrmatch падает на строках длиннее 255 символов.
const maxLevenshteinLen = 255

// compileFuzzy реализует best_fields: оценка условия равна максимуму по полям
// от веса поля, умноженного на долю совпавших токенов запроса.
// Токен совпадает со словом поля, если первые PrefixLength символов равны,
// а расстояние Левенштейна не больше допустимого для длины токена.
// Слова и токены длиннее maxLevenshteinLen сравниваются только на точное равенство.
func compileFuzzy(f domain.FuzzyMatch, boost float64, args *sqlArgs) (string, error) {
	tokens := strings.Fields(strings.ToLower(f.Query))
	if len(tokens) == 0 {
		return "", e.ErrEmptyQuery
	}
	if len(f.Fields) == 0 {
		return "", fmt.Errorf("fuzzy clause has no fields")
	}

	prefix := max(f.PrefixLength, 0)

	tokenParams := make([]string, len(tokens))
	for i, t := range tokens {
		tokenParams[i] = args.add(t)
	}

	fieldScores := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		col, ok := textColumns[field.Name]
		if !ok {
			return "", fmt.Errorf("unsupported fuzzy field %q", field.Name)
		}

		matches := make([]string, 0, len(tokens))
		for i, t := range tokens {
			edits := domain.AutoEditDistance(t)
			if f.Fuzziness != domain.FuzzinessAuto {
				if n, err := strconv.Atoi(f.Fuzziness); err == nil {
					edits = n
				}
			}

			matches = append(matches, fuzzyTokenMatch(col, tokenParams[i], utf8.RuneCountInString(t), prefix, edits))
		}

		fieldScores = append(fieldScores, fmt.Sprintf("%s * (%s) / %d.0",
			formatFloat(field.Weight), strings.Join(matches, " + "), len(tokens)))
	}

	score := fieldScores[0]
	if len(fieldScores) > 1 {
		score = "GREATEST(" + strings.Join(fieldScores, ",\n\t\t\t\t\t") + ")"
	}

	return fmt.Sprintf("(%s * %s)", formatFloat(boost), score), nil
}

// fuzzyTokenMatch даёт 1, если в колонке есть слово, совпадающее с токеном.
func fuzzyTokenMatch(col, param string, tokenLen, prefix, edits int) string {
	const words = `regexp_split_to_table(lower(coalesce(%s, '')), '[^[:alnum:]]+') AS w`

	from := fmt.Sprintf(words, col)
	if tokenLen > maxLevenshteinLen {
		return fmt.Sprintf(`(CASE WHEN EXISTS (SELECT 1 FROM %s WHERE w = %s) THEN 1 ELSE 0 END)`, from, param)
	}

	// CASE фиксирует порядок вычисления: levenshtein не вызывается для длинных слов.
	return fmt.Sprintf(
		`(CASE WHEN EXISTS (SELECT 1 FROM %s
					WHERE left(w, %d) = left(%s, %d)
					AND CASE WHEN length(w) <= %d THEN levenshtein(w, %s) <= %d ELSE w = %s END) THEN 1 ELSE 0 END)`,
		from, prefix, param, prefix, maxLevenshteinLen, param, edits, param,
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
