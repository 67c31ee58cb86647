package http

import (
	"net/http"

	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	itemUsecase usecase.ItemUC
	logger      logger.Logger
}

func NewItemHandler(itemUsecase usecase.ItemUC, logger logger.Logger) *ItemHandler {
	return &ItemHandler{itemUsecase: itemUsecase, logger: logger}
}

// addItem
//
//	@Summary		Добавление товара
//	@Description	Загружает изображение, считает эмбеддинги и индексирует товар. Повторный sku перезаписывает документ.
//	@Tags			items
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			sku				formData	string			true	"Артикул"
//	@Param			name			formData	string			true	"Название товара"
//	@Param			material		formData	string			false	"Материал"
//	@Param			item_type		formData	string			false	"Тип товара"
//	@Param			colors			formData	string			false	"Цвета через запятую"
//	@Param			dimensions		formData	string			false	"Размеры"
//	@Param			price			formData	number			true	"Цена"
//	@Param			special_price	formData	number			false	"Специальная цена"
//	@Param			final_price		formData	number			false	"Итоговая цена"
//	@Param			description		formData	string			false	"Описание"
//	@Param			image			formData	file			true	"Изображение товара"
//	@Success		201				{object}	AddItemResponse	"Товар проиндексирован"
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		413				{object}	ErrorResponse	"Файл слишком большой"
//	@Failure		415				{object}	ErrorResponse	"Неподдерживаемый формат изображения"
//	@Router			/items [post]
func (h *ItemHandler) addItem(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = maxImageFileSize + 1<<20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	req, err := parseItemForm(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	req.Image, err = parseImage(r.MultipartForm, "image")
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	res, err := h.itemUsecase.AddItem(r.Context(), req)
	if err != nil {
		h.logger.Warnf("add item %s: %v", req.SKU, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, AddItemResponse{SKU: res.SKU, ImagePath: res.ImagePath})
}

// getItem
//
//	@Summary	Товар по артикулу
//	@Tags		items
//	@Produce	json
//	@Param		sku	path		string			true	"Артикул"
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/items/{sku} [get]
func (h *ItemHandler) getItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	info, err := h.itemUsecase.GetItem(r.Context(), sku)
	if err != nil {
		h.logger.Warnf("get item %s: %v", sku, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toItemResponse(*info))
}
