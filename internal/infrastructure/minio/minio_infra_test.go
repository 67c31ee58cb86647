package minio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageRepo struct {
	mu      sync.Mutex
	objects map[string]*domain.Image
	deleted []string
	failDel int
}

func (f *fakeImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[image.ObjectKey] = image
	return image.ObjectKey, nil
}

func (f *fakeImageRepo) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.objects[key]
	if !ok {
		return nil, e.ErrImageNotFound
	}
	return img.Bytes, nil
}

func (f *fakeImageRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel > 0 {
		f.failDel--
		return errors.New("minio busy")
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newInfra(repo *fakeImageRepo) *MinioInfrastructure {
	return NewMinioInfrastructure(repo, &cfg.MinIOCfg{BucketName: "images", UploadImagesLimit: 2}, logger.NewNop(), context.Background())
}

func TestUploadImage(t *testing.T) {
	repo := &fakeImageRepo{objects: map[string]*domain.Image{}}
	infra := newInfra(repo)

	res, err := infra.UploadImage(context.Background(), usecase.NewUploadImageReq("SKU-1",
		usecase.NewItemImage([]byte{1, 2, 3}, "image/png", 3, "a.png")))
	require.NoError(t, err)

	assert.Regexp(t, `^SKU-1/original-[0-9a-f-]{36}\.png$`, res.Key)
	stored := repo.objects[res.Key]
	require.NotNil(t, stored)
	assert.Equal(t, "images", stored.Bucket)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.EqualValues(t, 3, stored.Size)
}

func TestUploadImage_UnsupportedMime(t *testing.T) {
	infra := newInfra(&fakeImageRepo{objects: map[string]*domain.Image{}})

	_, err := infra.UploadImage(context.Background(), usecase.NewUploadImageReq("S",
		usecase.NewItemImage([]byte{1}, "image/gif", 1, "a.gif")))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestCleanupImages_RetriesAndWaits(t *testing.T) {
	repo := &fakeImageRepo{objects: map[string]*domain.Image{"k1": {}}, failDel: 1}
	infra := newInfra(repo)

	infra.CleanupImages([]string{"k1"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))

	assert.Equal(t, []string{"k1"}, repo.deleted)
}
