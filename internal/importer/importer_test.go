package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	batches  [][]*domain.Item
	refreshs []bool
}

func (f *fakeCatalog) BulkInsert(_ context.Context, items []*domain.Item, refresh bool) error {
	f.batches = append(f.batches, append([]*domain.Item(nil), items...))
	f.refreshs = append(f.refreshs, refresh)
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
}

func (f *fakeUploader) UploadImage(_ context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[req.SKU]++
	if f.failures[req.SKU] > 0 {
		f.failures[req.SKU]--
		return nil, errors.New("connection reset")
	}
	return &usecase.UploadImageRes{Key: req.SKU + "/original.png"}, nil
}

func writeFolder(t *testing.T, root, name, metadata, image string) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if metadata != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(metadata), 0o644))
	}
	if image != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, image), []byte("\x89PNG\r\n\x1a\nfake"), 0o644))
	}
}

func TestImport(t *testing.T) {
	root := t.TempDir()
	writeFolder(t, root, "A-1", "Sofa A\nMaterial: Velvet\nItem_Type: sofa\nColors: Red, Blue\n", "original.png")
	writeFolder(t, root, "B-2", "Chair B\nItem_Type: chair\n", "Original.JPG")
	writeFolder(t, root, "C-3", "Table C\n", "preview.png")
	writeFolder(t, root, "D-4", "", "original.png")
	writeFolder(t, root, "E-5", "Lamp E\n", "original.jpeg")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	catalog := &fakeCatalog{}
	uploader := &fakeUploader{failures: map[string]int{"A-1": 1}, calls: map[string]int{}}
	imp := New(catalog, uploader, Config{Workers: 2, UploadRetries: 3, BatchSize: 2}, logger.NewNop())

	report, err := imp.Import(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Report{Imported: 3, Skipped: 2}, report)
	require.Len(t, catalog.batches, 2)
	assert.Equal(t, []bool{false, true}, catalog.refreshs)

	first := catalog.batches[0][0]
	assert.Equal(t, "A-1", first.SKU)
	assert.Equal(t, "Velvet sofa", first.Description)
	assert.Equal(t, []string{"Red", "Blue"}, first.Colors)
	assert.Equal(t, "A-1/original.png", first.ImagePath)
	assert.Equal(t, "unknown chair", catalog.batches[0][1].Description)
	assert.Equal(t, "E-5", catalog.batches[1][0].SKU)

	assert.Equal(t, 2, uploader.calls["A-1"])
}

func TestImport_UploadGivesUp(t *testing.T) {
	root := t.TempDir()
	writeFolder(t, root, "A-1", "Sofa A\n", "original.png")

	catalog := &fakeCatalog{}
	uploader := &fakeUploader{failures: map[string]int{"A-1": 5}, calls: map[string]int{}}
	imp := New(catalog, uploader, Config{UploadRetries: 1}, logger.NewNop())

	_, err := imp.Import(context.Background(), root)
	require.Error(t, err)
	assert.Empty(t, catalog.batches)
	assert.Equal(t, 1, uploader.calls["A-1"])
}

func TestImport_MissingDir(t *testing.T) {
	imp := New(&fakeCatalog{}, &fakeUploader{calls: map[string]int{}}, Config{}, logger.NewNop())

	_, err := imp.Import(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
