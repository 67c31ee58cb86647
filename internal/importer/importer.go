package importer

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/jitter"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	metadataFile  = "metadata.txt"
	imageStem     = "original"
	uploadBackoff = 500 * time.Millisecond
	uploadMaxWait = 10 * time.Second
)

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

var errSkip = errors.New("skipped")

type Catalog interface {
	BulkInsert(ctx context.Context, items []*domain.Item, refresh bool) error
}

type Uploader interface {
	UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error)
}

type Config struct {
	Workers       int
	UploadRetries int
	BatchSize     int
}

type Report struct {
	Imported int
	Skipped  int
}

// Importer загружает каталог из папок вида data/<sku>/{metadata.txt, original.jpg}.
// Имя папки используется как sku, поэтому повторный импорт перезаписывает товары.
type Importer struct {
	catalog  Catalog
	uploader Uploader
	cfg      Config
	logger   logger.Logger
}

func New(catalog Catalog, uploader Uploader, cfg Config, logger logger.Logger) *Importer {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.UploadRetries <= 0 {
		cfg.UploadRetries = 3
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	return &Importer{catalog: catalog, uploader: uploader, cfg: cfg, logger: logger.With("component", "importer")}
}

// Import готовит товары параллельно, затем пишет их пачками по BatchSize.
// Последняя пачка пишется с ожиданием индексации.
func (i *Importer) Import(ctx context.Context, dataDir string) (Report, error) {
	var report Report

	folders, err := listFolders(dataDir)
	if err != nil {
		return report, e.Wrap(whereami.WhereAmI(), err)
	}

	items := make([]*domain.Item, len(folders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.Workers)
	for idx, folder := range folders {
		g.Go(func() error {
			item, err := i.prepare(gctx, folder)
			if errors.Is(err, errSkip) {
				return nil
			}
			if err != nil {
				return e.Wrap(folder, err)
			}
			items[idx] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	ready := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			ready = append(ready, item)
		}
	}
	report.Skipped = len(folders) - len(ready)

	for start := 0; start < len(ready); start += i.cfg.BatchSize {
		end := min(start+i.cfg.BatchSize, len(ready))
		if err := i.catalog.BulkInsert(ctx, ready[start:end], end == len(ready)); err != nil {
			return report, e.Wrap(whereami.WhereAmI(), err)
		}
		report.Imported = end
		i.logger.Infof("imported %d/%d items", end, len(ready))
	}

	return report, nil
}

// prepare читает папку товара и загружает изображение.
// Папки без metadata.txt или без изображения пропускаются.
func (i *Importer) prepare(ctx context.Context, folder string) (*domain.Item, error) {
	f, err := os.Open(filepath.Join(folder, metadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		i.logger.Warnf("no metadata found in %s, skipping", folder)
		return nil, errSkip
	}
	if err != nil {
		return nil, err
	}
	meta, err := ParseMetadata(f)
	f.Close()
	if err != nil {
		i.logger.Warnf("bad metadata in %s, skipping: %v", folder, err)
		return nil, errSkip
	}

	imagePath, ok := findImage(folder)
	if !ok {
		i.logger.Warnf("no images found in %s, skipping", folder)
		return nil, errSkip
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}

	sku := filepath.Base(folder)
	image := usecase.NewItemImage(data, http.DetectContentType(data[:min(len(data), 512)]), int64(len(data)), imagePath)

	var key string
	err = jitter.Retry(ctx, i.cfg.UploadRetries, uploadBackoff, uploadMaxWait, func(attempt int) error {
		res, err := i.uploader.UploadImage(ctx, usecase.NewUploadImageReq(sku, image))
		if err != nil {
			i.logger.Warnf("upload %s failed (attempt %d/%d): %v", imagePath, attempt+1, i.cfg.UploadRetries, err)
			return err
		}
		key = res.Key
		return nil
	})
	if err != nil {
		return nil, err
	}

	return meta.Item(sku, key), nil
}

func listFolders(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, filepath.Join(dataDir, entry.Name()))
		}
	}
	sort.Strings(folders)

	return folders, nil
}

// findImage ищет original.{jpg,jpeg,png} без учёта регистра.
func findImage(folder string) (string, bool) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if stem != imageStem {
			continue
		}
		for _, allowed := range imageExtensions {
			if ext == allowed {
				return filepath.Join(folder, name), true
			}
		}
	}

	return "", false
}
