package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ItemRepo хранит документы каталога в PostgreSQL.
type ItemRepo struct {
	pool *pgxpool.Pool
	conv converter.ItemConverter
}

func NewItemRepo(pool *pgxpool.Pool, conv converter.ItemConverter) *ItemRepo {
	return &ItemRepo{
		pool: pool,
		conv: conv,
	}
}

const upsertItemQuery = `
	INSERT INTO items (
		sku, item_name, material_value, item_type, colors, dimensions,
		price, special_price, final_price, description, image_path, media_gallery,
		image_embedding, text_embedding
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (sku)
	DO UPDATE SET
		item_name = EXCLUDED.item_name,
		material_value = EXCLUDED.material_value,
		item_type = EXCLUDED.item_type,
		colors = EXCLUDED.colors,
		dimensions = EXCLUDED.dimensions,
		price = EXCLUDED.price,
		special_price = EXCLUDED.special_price,
		final_price = EXCLUDED.final_price,
		description = EXCLUDED.description,
		image_path = EXCLUDED.image_path,
		media_gallery = EXCLUDED.media_gallery,
		image_embedding = EXCLUDED.image_embedding,
		text_embedding = EXCLUDED.text_embedding,
		updated_at = NOW()
`

// Upsert полностью заменяет документ с тем же SKU. Выполняется в транзакции из контекста.
func (r *ItemRepo) Upsert(ctx context.Context, item *domain.Item) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := r.conv.ToModel(item)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, upsertItemQuery, upsertArgs(model)...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// BulkUpsert отправляет все документы одним батчем внутри транзакции из контекста.
func (r *ItemRepo) BulkUpsert(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		model, err := r.conv.ToModel(item)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		batch.Queue(upsertItemQuery, upsertArgs(model)...)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range items {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return e.Wrap(fmt.Sprintf("%s: item %s", whereami.WhereAmI(), items[i].SKU), err)
		}
	}

	if err := results.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `, image_embedding, text_embedding
		FROM items
		WHERE sku = $1
	`

	item, err := r.scanItem(r.pool.QueryRow(ctx, query, sku), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(sku, e.ErrItemNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return item, nil
}

// GetBySKUs возвращает документы по ключам; отсутствующие ключи пропускаются.
func (r *ItemRepo) GetBySKUs(ctx context.Context, skus []string) (map[string]domain.Item, error) {
	result := make(map[string]domain.Item, len(skus))
	if len(skus) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE sku = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, skus)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := r.scanItem(rows, false)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[item.SKU] = *item
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// HybridSearch выполняет гибридный запрос и возвращает документы с оценками по убыванию.
func (r *ItemRepo) HybridSearch(ctx context.Context, q domain.HybridQuery) ([]domain.Hit, error) {
	query, args, err := compileHybrid(q)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	hits := make([]domain.Hit, 0, q.Size)
	for rows.Next() {
		var (
			model converter.ItemModel
			score float64
		)
		if err := rows.Scan(append(itemDest(&model), &score)...); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		item, err := r.conv.ToEntity(&model)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		hits = append(hits, domain.Hit{Item: *item, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return hits, nil
}

// AggregateTerms возвращает различные значения полей в нижнем регистре,
// самые частые первыми, не больше limit на поле.
func (r *ItemRepo) AggregateTerms(ctx context.Context, fields []domain.FacetField, limit int) (map[domain.FacetField][]string, error) {
	result := make(map[domain.FacetField][]string, len(fields))

	for _, field := range fields {
		var query string
		switch field {
		case domain.FacetItemType:
			query = `
				SELECT lower(item_type) AS v
				FROM items
				WHERE item_type <> ''
				GROUP BY v
				ORDER BY count(*) DESC, v
				LIMIT $1
			`
		case domain.FacetColors:
			query = `
				SELECT lower(c) AS v
				FROM items, unnest(colors) AS c
				WHERE c <> ''
				GROUP BY v
				ORDER BY count(*) DESC, v
				LIMIT $1
			`
		default:
			return nil, fmt.Errorf("%s: unsupported facet field %q", whereami.WhereAmI(), field)
		}

		rows, err := r.pool.Query(ctx, query, limit)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		values, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result[field] = values
	}

	return result, nil
}

// Suggest возвращает названия товаров, начинающиеся с префикса или содержащие слово с этим префиксом.
// Совпадения с начала названия идут первыми.
func (r *ItemRepo) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `
		SELECT item_name
		FROM (
			SELECT DISTINCT ON (lower(item_name)) item_name,
				CASE WHEN lower(item_name) LIKE $1 || '%' THEN 0 ELSE 1 END AS rank
			FROM items
			WHERE lower(item_name) LIKE $1 || '%'
			   OR lower(item_name) LIKE '% ' || $1 || '%'
			ORDER BY lower(item_name), rank
		) s
		ORDER BY rank, item_name
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, escapeLike(strings.ToLower(prefix)), limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return names, nil
}

// ListWithEmbeddings постранично отдаёт документы вместе с эмбеддингами, упорядоченные по SKU.
func (r *ItemRepo) ListWithEmbeddings(ctx context.Context, afterSKU string, limit int) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `, image_embedding, text_embedding
		FROM items
		WHERE sku > $1
		ORDER BY sku
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, afterSKU, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0, limit)
	for rows.Next() {
		item, err := r.scanItem(rows, true)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return items, nil
}

// Truncate удаляет все документы каталога. Очередь событий не трогается.
func (r *ItemRepo) Truncate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "TRUNCATE items"); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *ItemRepo) scanItem(row pgx.Row, withEmbeddings bool) (*domain.Item, error) {
	var model converter.ItemModel

	dest := itemDest(&model)
	if withEmbeddings {
		dest = append(dest, &model.ImageEmbedding, &model.TextEmbedding)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	return r.conv.ToEntity(&model)
}

// Адреса полей модели в порядке itemColumns.
func itemDest(m *converter.ItemModel) []any {
	return []any{
		&m.SKU, &m.ItemName, &m.MaterialValue, &m.ItemType, &m.Colors, &m.Dimensions,
		&m.Price, &m.SpecialPrice, &m.FinalPrice, &m.Description, &m.ImagePath, &m.MediaGallery,
	}
}

func upsertArgs(m *converter.ItemModel) []any {
	return []any{
		m.SKU, m.ItemName, m.MaterialValue, m.ItemType, m.Colors, m.Dimensions,
		m.Price, m.SpecialPrice, m.FinalPrice, m.Description, m.ImagePath, m.MediaGallery,
		m.ImageEmbedding, m.TextEmbedding,
	}
}
