package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
)

type SearchHandler struct {
	searchUsecase usecase.SearchUC
	logger        logger.Logger
}

func NewSearchHandler(searchUsecase usecase.SearchUC, logger logger.Logger) *SearchHandler {
	return &SearchHandler{searchUsecase: searchUsecase, logger: logger}
}

// textSearch
//
//	@Summary		Поиск по ключевым словам
//	@Description	Гибридный запрос: фасеты тип/цвет из словаря плюс нечёткое совпадение по текстовым полям.
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Запрос"
//	@Param			k	query		int		false	"Размер выдачи"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	ErrorResponse	"Пустой запрос или неверный k"
//	@Router			/search/text [get]
func (h *SearchHandler) textSearch(w http.ResponseWriter, r *http.Request) {
	h.searchByText(w, r, h.searchUsecase.TextSearch)
}

// semanticSearch
//
//	@Summary		Семантический поиск по тексту
//	@Description	Текст переводится в эмбеддинг, поиск ближайших по text_embedding с порогом схожести.
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Запрос"
//	@Param			k	query		int		false	"Размер выдачи"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse	"Сервис эмбеддингов недоступен"
//	@Router			/search/semantic [get]
func (h *SearchHandler) semanticSearch(w http.ResponseWriter, r *http.Request) {
	h.searchByText(w, r, h.searchUsecase.SemanticSearch)
}

type textSearchFunc func(ctx context.Context, req *usecase.TextSearchReq) (*usecase.SearchRes, error)

func (h *SearchHandler) searchByText(w http.ResponseWriter, r *http.Request, search textSearchFunc) {
	k, err := parseK(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	res, err := search(r.Context(), &usecase.TextSearchReq{Query: r.URL.Query().Get("q"), K: k})
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

// imageSearch
//
//	@Summary		Поиск похожих по изображению
//	@Tags			search
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Изображение (jpeg, png, webp)"
//	@Param			k		query		int		false	"Размер выдачи"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse	"Повреждённое изображение"
//	@Failure		413		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Router			/search/image [post]
func (h *SearchHandler) imageSearch(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20

	r.Body = http.MaxBytesReader(w, r.Body, maxImageFileSize+1<<20)

	k, err := parseK(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	image, err := parseImage(r.MultipartForm, "image")
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	res, err := h.searchUsecase.ImageSearch(r.Context(), &usecase.ImageSearchReq{Image: image, K: k})
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

// embeddingSearch
//
//	@Summary		Поиск по готовому вектору
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			field	query		string					true	"image_embedding или text_embedding"
//	@Param			k		query		int						false	"Размер выдачи"
//	@Param			body	body		EmbeddingSearchRequest	true	"Вектор"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse	"Неподдерживаемое поле или неверная размерность"
//	@Router			/search/embedding [post]
func (h *SearchHandler) embeddingSearch(w http.ResponseWriter, r *http.Request) {
	const maxBody = 1 << 20

	k, err := parseK(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	if err := ensureJSON(r); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	var body EmbeddingSearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest))
		return
	}

	res, err := h.searchUsecase.EmbeddingSearch(r.Context(), &usecase.EmbeddingSearchReq{
		Field:  r.URL.Query().Get("field"),
		Vector: body.Vector,
		K:      k,
	})
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

// suggest
//
//	@Summary	Подсказки по названию
//	@Tags		search
//	@Produce	json
//	@Param		q	query		string	true	"Префикс"
//	@Param		k	query		int		false	"Число подсказок"
//	@Success	200	{object}	SuggestResponse
//	@Failure	400	{object}	ErrorResponse
//	@Router		/suggest [get]
func (h *SearchHandler) suggest(w http.ResponseWriter, r *http.Request) {
	k, err := parseK(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	res, err := h.searchUsecase.Suggest(r.Context(), &usecase.SuggestReq{Prefix: r.URL.Query().Get("q"), K: k})
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, SuggestResponse{Suggestions: res.Suggestions})
}
