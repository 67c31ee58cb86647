package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const maxImageFileSize = usecase.MaxImageSize

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var badRequestErrors = []error{
	e.ErrStatusBadRequest,
	e.ErrExpectedMultipart,
	e.ErrExpectedJSON,
	e.ErrMissingFields,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrSKURequired,
	e.ErrItemNameRequired,
	e.ErrNoImages,
	e.ErrMalformedImage,
	e.ErrEmptyQuery,
	e.ErrInvalidK,
	e.ErrUnsupportedVectorField,
	e.ErrVectorEmbeddingEmpty,
	e.ErrVectorDimMismatch,
}

func ToHTTPResponse(err error) (int, string) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrItemNotFound):
		return http.StatusNotFound, e.ErrItemNotFound.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, e.ErrUpstreamUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePrice разбирает цену вида "599.99" или "600".
// Цена не может быть отрицательной, больше 10^9 или иметь больше двух знаков после точки.
func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, e.Wrap("price is empty", e.ErrInvalidPrice)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.Wrap(s, e.ErrInvalidPrice)
	}

	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1_000_000_000)) {
		return 0, e.Wrap(s, e.ErrInvalidPrice)
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.Wrap(s, e.ErrPricePrecision)
	}

	return d.InexactFloat64(), nil
}

// parseOptionalPrice возвращает nil для пустого значения.
func parseOptionalPrice(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	p, err := parsePrice(s)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// parseK разбирает параметр k. Отсутствие параметра даёт 0, то есть значение по умолчанию.
func parseK(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("k"))
	if raw == "" {
		return 0, nil
	}

	k, err := strconv.Atoi(raw)
	if err != nil || k <= 0 {
		return 0, e.Wrap(raw, e.ErrInvalidK)
	}

	return k, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

func ensureJSON(r *http.Request) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedJSON)
	}
	return nil
}

// parseItemForm собирает запрос на добавление товара из полей формы.
// Цвета разбираются один раз здесь, дальше товар несёт упорядоченный список.
func parseItemForm(r *http.Request) (*usecase.AddItemReq, error) {
	sku := strings.TrimSpace(r.FormValue("sku"))
	name := strings.TrimSpace(r.FormValue("name"))
	priceStr := r.FormValue("price")

	if sku == "" || name == "" || priceStr == "" {
		return nil, e.Wrap(fmt.Sprintf("sku: %q, name: %q, price: %q", sku, name, priceStr), e.ErrMissingFields)
	}

	price, err := parsePrice(priceStr)
	if err != nil {
		return nil, err
	}

	special, err := parseOptionalPrice(r.FormValue("special_price"))
	if err != nil {
		return nil, err
	}

	final := price
	if special != nil {
		final = *special
	}
	if raw := r.FormValue("final_price"); strings.TrimSpace(raw) != "" {
		if final, err = parsePrice(raw); err != nil {
			return nil, err
		}
	}

	return &usecase.AddItemReq{
		SKU:           sku,
		Name:          name,
		MaterialValue: strings.TrimSpace(r.FormValue("material")),
		ItemType:      strings.TrimSpace(r.FormValue("item_type")),
		Colors:        domain.ParseColors(r.FormValue("colors")),
		Dimensions:    strings.TrimSpace(r.FormValue("dimensions")),
		Price:         price,
		SpecialPrice:  special,
		FinalPrice:    final,
		Description:   strings.TrimSpace(r.FormValue("description")),
	}, nil
}

// parseImage читает единственный файл изображения из поля формы.
func parseImage(form *multipart.Form, field string) (*usecase.ItemImage, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, e.ErrNoImages
	}

	fh := form.File[field][0]
	data, mimeType, err := readFile(fh, maxImageFileSize)
	if err != nil {
		return nil, err
	}

	return usecase.NewItemImage(data, mimeType, int64(len(data)), fh.Filename), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, "", e.Wrap(fh.Filename, e.ErrNoImages)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
