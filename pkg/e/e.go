package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")
	ErrVectorDimMismatch    = fmt.Errorf("vector dimension mismatch")

	// Ошибки внешних зависимостей (поиск деградирует до пустого результата)
	ErrUpstreamUnavailable = fmt.Errorf("upstream unavailable")
	ErrItemNotFound        = fmt.Errorf("item not found")
	ErrImageNotFound       = fmt.Errorf("image not found")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrExpectedMultipart      = fmt.Errorf("expected multipart/form-data")
	ErrExpectedJSON           = fmt.Errorf("expected application/json")
	ErrMissingFields          = fmt.Errorf("missing required fields")
	ErrInvalidPrice           = fmt.Errorf("invalid price")
	ErrPricePrecision         = fmt.Errorf("price must have at most 2 decimal places")
	ErrSKURequired            = fmt.Errorf("sku is required")
	ErrItemNameRequired       = fmt.Errorf("item name is required")
	ErrNoImages               = fmt.Errorf("no image provided")
	ErrFileTooLarge           = fmt.Errorf("file too large")
	ErrUnsupportedMediaType   = fmt.Errorf("unsupported media type")
	ErrMalformedImage         = fmt.Errorf("malformed image")
	ErrEmptyQuery             = fmt.Errorf("query must not be empty")
	ErrInvalidK               = fmt.Errorf("k must be a positive integer")
	ErrUnsupportedVectorField = fmt.Errorf("field must be 'image_embedding' or 'text_embedding'")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Upstream помечает ошибку внешней зависимости как ErrUpstreamUnavailable, сохраняя причину.
func Upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
