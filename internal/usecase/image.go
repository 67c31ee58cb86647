package usecase

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/jimlawless/whereami"
)

const MaxImageSize = 15 << 20

// validateImage проверяет, что байты действительно являются поддерживаемым изображением.
// Для webp проверяется только сигнатура контейнера.
func validateImage(img *ItemImage) error {
	if img == nil || len(img.Data) == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNoImages)
	}
	if int64(len(img.Data)) > MaxImageSize {
		return e.Wrap(img.Name, e.ErrFileTooLarge)
	}

	switch img.MimeType {
	case "image/jpeg", "image/jpg", "image/png":
		if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
			return e.Wrap(img.Name, e.ErrMalformedImage)
		}
	case "image/webp":
		if len(img.Data) < 12 || string(img.Data[:4]) != "RIFF" || string(img.Data[8:12]) != "WEBP" {
			return e.Wrap(img.Name, e.ErrMalformedImage)
		}
	default:
		return e.Wrap(img.MimeType, e.ErrUnsupportedMediaType)
	}

	return nil
}
