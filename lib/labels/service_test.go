package labels_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"inventory/lib/data"
	"inventory/lib/labels"
	"inventory/lib/models"
	"inventory/lib/testutil"
	"inventory/lib/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string][]byte
	gets    int
	sets    int
	failGet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	artifact, ok := c.entries[key]
	return artifact, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, artifact []byte) error {
	c.sets++
	c.entries[key] = artifact
	return nil
}

func newLabelService(repos *testutil.Repositories, cache labels.ArtifactCache) *labels.Service {
	return &labels.Service{
		Composer: newComposer(repos),
		Cache:    cache,
		Logger:   testutil.NewTestLogger(),
	}
}

func decode(t *testing.T, artifact *models.LabelArtifact) []byte {
	t.Helper()
	_, content, err := util.DecodeDataURL(artifact.DataURL)
	require.NoError(t, err)
	return content
}

func Test_GeneratePDF_IsDeterministic(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	shelfID := repos.MustCreateLocation(t, "Shelf Ü", nil, models.LocationTypeShelf)
	ids := createItems(t, repos, 13, &shelfID)
	service := newLabelService(repos, nil)
	req := &models.LabelRequest{ItemIDs: ids, Columns: 3, Rows: 4, PaperSize: "letter"}

	//Act
	first, err := service.GeneratePDF(context.Background(), req)
	require.NoError(t, err)
	second, err := service.GeneratePDF(context.Background(), req)
	require.NoError(t, err)

	//Assert
	assert.True(t, strings.HasPrefix(first.DataURL, "data:application/pdf;base64,"))
	assert.Equal(t, 2, first.Pages)
	assert.Equal(t, 13, first.Labels)
	content := decode(t, first)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Equal(t, content, decode(t, second))
}

func Test_GeneratePDF_RejectsUnknownPaper(t *testing.T) {
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 1, nil)

	_, err := newLabelService(repos, nil).GeneratePDF(context.Background(), &models.LabelRequest{
		ItemIDs: ids, Columns: 2, Rows: 2, PaperSize: "B5",
	})

	assert.ErrorIs(t, err, data.ErrInvalidConfig)
}

func Test_GenerateImage_TruncatesToOneGrid(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	boxID := repos.MustCreateLocation(t, "Box", nil, models.LocationTypeBox)
	ids := createItems(t, repos, 7, &boxID)
	service := newLabelService(repos, nil)
	req := &models.LabelRequest{ItemIDs: ids, Columns: 2, Rows: 2}

	//Act
	first, err := service.GenerateImage(context.Background(), req)
	require.NoError(t, err)
	second, err := service.GenerateImage(context.Background(), req)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, 4, first.Labels)
	assert.Equal(t, 3, first.Omitted)
	assert.Equal(t, 1, first.Pages)
	content := decode(t, first)
	assert.Equal(t, content, decode(t, second))
	img, err := png.Decode(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 2*320, img.Bounds().Dx())
	assert.Equal(t, 2*160, img.Bounds().Dy())
}

func Test_GenerateImage_EmptySelection(t *testing.T) {
	repos := testutil.NewRepositories(t)

	_, err := newLabelService(repos, nil).GenerateImage(context.Background(), &models.LabelRequest{Columns: 2, Rows: 2})

	assert.ErrorIs(t, err, data.ErrEmptySelection)
}

func Test_Service_UsesCache(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 3, nil)
	cache := newMemoryCache()
	service := newLabelService(repos, cache)
	req := &models.LabelRequest{ItemIDs: ids, Columns: 2, Rows: 2}

	//Act
	first, err := service.GeneratePDF(context.Background(), req)
	require.NoError(t, err)
	second, err := service.GeneratePDF(context.Background(), req)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, first.DataURL, second.DataURL)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
	assert.Len(t, cache.entries, 1)
}

func Test_Service_CacheChangesWithStock(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	ids := createItems(t, repos, 1, nil)
	cache := newMemoryCache()
	service := newLabelService(repos, cache)
	req := &models.LabelRequest{ItemIDs: ids, Columns: 1, Rows: 1}

	//Act
	_, err := service.GenerateImage(ctx, req)
	require.NoError(t, err)
	_, err = repos.Items.AdjustQuantity(ctx, &models.UpdateQuantityRequest{
		ItemID: ids[0], Change: 5, OperationType: models.OperationAdd,
	})
	require.NoError(t, err)
	_, err = service.GenerateImage(ctx, req)
	require.NoError(t, err)

	//Assert
	assert.Len(t, cache.entries, 2)
}

func Test_Service_CacheReadFailureStillRenders(t *testing.T) {
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 1, nil)
	cache := newMemoryCache()
	cache.failGet = errors.New("connection refused")

	artifact, err := newLabelService(repos, cache).GenerateImage(context.Background(), &models.LabelRequest{ItemIDs: ids, Columns: 1, Rows: 1})

	require.NoError(t, err)
	assert.NotEmpty(t, artifact.DataURL)
	assert.Equal(t, 1, cache.sets)
}
