package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/search"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

// SearchUseCase — гибридный, семантический и визуальный поиск по каталогу.
type SearchUseCase struct {
	catalog  CatalogRepository
	facets   FacetProvider
	builder  *search.Builder
	ranker   *search.Ranker
	embedder Embedder
	cfg      *cfg.SearchCfg
	logger   logger.Logger
}

func NewSearchUseCase(
	catalog CatalogRepository,
	facets FacetProvider,
	builder *search.Builder,
	ranker *search.Ranker,
	embedder Embedder,
	cfg *cfg.SearchCfg,
	logger logger.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		catalog:  catalog,
		facets:   facets,
		builder:  builder,
		ranker:   ranker,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// TextSearch классифицирует токены запроса по фасетам и выполняет гибридный запрос.
func (s *SearchUseCase) TextSearch(ctx context.Context, req *TextSearchReq) (*SearchRes, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmptyQuery)
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return nil, err
	}

	facets := s.facets.Get(ctx, domain.AllFacetFields...)
	classification := search.Classify(query, facets)

	q, err := s.builder.Build(classification, k)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	hits := s.catalog.SearchHybrid(ctx, q)
	s.logger.Debugf("text search %q: types=%v colors=%v hits=%d", query, classification.Types, classification.Colors, len(hits))

	return NewSearchRes(domain.SearchResult{Hits: hits, Candidates: len(hits)}), nil
}

// SemanticSearch кодирует запрос текстовой моделью и ищет ближайших соседей по text_embedding.
func (s *SearchUseCase) SemanticSearch(ctx context.Context, req *TextSearchReq) (*SearchRes, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmptyQuery)
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.EncodeText(ctx, query, true)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.knn(ctx, domain.TextEmbeddingField, vector, k), nil
}

// ImageSearch ищет визуально похожие товары. Вектор запроса всегда нормализуется.
func (s *SearchUseCase) ImageSearch(ctx context.Context, req *ImageSearchReq) (*SearchRes, error) {
	if err := validateImage(req.Image); err != nil {
		return nil, err
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.EncodeImage(ctx, req.Image.Data, true)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.knn(ctx, domain.ImageEmbeddingField, vector, k), nil
}

// EmbeddingSearch выполняет KNN по готовому вектору в указанном поле.
func (s *SearchUseCase) EmbeddingSearch(ctx context.Context, req *EmbeddingSearchReq) (*SearchRes, error) {
	field, err := domain.ParseVectorField(req.Field)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return nil, err
	}

	vector := domain.Vector(req.Vector)
	if vector.Empty() {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorEmbeddingEmpty)
	}
	if err := vector.Validate(s.cfg.VectorSize); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.knn(ctx, field, vector, k), nil
}

// Suggest дополняет префикс до названий товаров.
func (s *SearchUseCase) Suggest(ctx context.Context, req *SuggestReq) (*SuggestRes, error) {
	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmptyQuery)
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return nil, err
	}

	suggestions := s.catalog.Suggest(ctx, prefix, k)
	if suggestions == nil {
		suggestions = []string{}
	}

	return &SuggestRes{Suggestions: suggestions}, nil
}

func (s *SearchUseCase) knn(ctx context.Context, field domain.VectorField, vector domain.Vector, k int) *SearchRes {
	candidates := s.catalog.SearchByKnn(ctx, field, vector, s.ranker.CandidateCount(k), domain.DefaultSourceFields)
	result := s.ranker.Rank(candidates, k)

	if result.NoConfidentMatch {
		s.logger.Infof("%s search: %d candidates, none above %.2f", field, result.Candidates, s.ranker.MinScore())
	}

	return NewSearchRes(result)
}

// resolveK: 0 означает значение по умолчанию, больше MaxK обрезается.
func (s *SearchUseCase) resolveK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, e.Wrap(whereami.WhereAmI(), e.ErrInvalidK)
	case k == 0:
		return s.cfg.DefaultK, nil
	case s.cfg.MaxK > 0 && k > s.cfg.MaxK:
		return s.cfg.MaxK, nil
	default:
		return k, nil
	}
}
