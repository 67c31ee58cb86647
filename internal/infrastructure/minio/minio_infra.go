package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/infrastructure"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/jitter"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/google/uuid"
)

// MinioInfrastructure управляет загрузкой и очисткой изображений товаров.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	sem         chan struct{}
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		sem:         make(chan struct{}, max(cfg.UploadImagesLimit, 1)),
	}
}

// UploadImage кладёт изображение товара под ключом {sku}/original-{uuid}.{ext}.
// Число одновременных загрузок ограничено UploadImagesLimit.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	ext, err := infrastructure.GetExtensionFromMIME(req.Image.MimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("invalid mime type %s for %s: %w", req.Image.MimeType, req.Image.Name, err))
	}

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}

	imageID := uuid.NewString()
	objKey := ObjectKey(req.SKU, imageID, ext)
	image := domain.NewImage(imageID, m.cfg.BucketName, objKey, req.Image.Data, req.Image.Size, req.Image.MimeType)

	key, err := m.minioRepo.Upload(ctx, image)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", req.Image.Name, err))
	}

	return &usecase.UploadImageRes{Key: key}, nil
}

// ObjectKey — ключ объекта изображения товара.
func ObjectKey(sku, imageID, ext string) string {
	return fmt.Sprintf("%s/original-%s.%s", sku, imageID, ext)
}

// CleanupImages запускает фоновую очистку указанных ключей.
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const (
		op       = "MinioInfrastructure.cleanupUploadedKeys"
		attempts = 3
	)
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	for _, key := range keys {
		err := jitter.Retry(ctx, attempts, time.Second, 10*time.Second, func(int) error {
			return m.minioRepo.Delete(ctx, key)
		})
		if err != nil {
			m.logger.Warnf("%s: key=%s: %v", op, key, err)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
