package qrcode_test

import (
	"context"
	"testing"

	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/qrcode"
	"inventory/lib/testutil"
	"inventory/lib/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locationStore struct {
	data.LocationRepository
	data.QRCodeRepository
}

func newLocationCodes(repos *testutil.Repositories) *qrcode.LocationCodes {
	return &qrcode.LocationCodes{
		Store:  locationStore{repos.Locations, repos.QRCodes},
		Logger: testutil.NewTestLogger(),
	}
}

func Test_Generate_AssignsOnceAndRendersPNG(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	shelfID := repos.MustCreateLocation(t, "Shelf", nil, models.LocationTypeShelf)
	codes := newLocationCodes(repos)

	//Act
	first, err := codes.Generate(ctx, shelfID)
	require.NoError(t, err)
	second, err := codes.Generate(ctx, shelfID)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.QRData, second.QRData)
	assert.Equal(t, "Shelf", first.Name)
	mimeType, content, err := util.DecodeDataURL(first.QRData)
	require.NoError(t, err)
	assert.Equal(t, util.MimePNG, mimeType)
	assert.NotEmpty(t, content)

	resolved, err := repos.Locations.GetLocationByQRCode(ctx, first.Code)
	require.NoError(t, err)
	assert.Equal(t, shelfID, resolved.ID)
}

func Test_GenerateBatch_KeepsRequestOrder(t *testing.T) {
	repos := testutil.NewRepositories(t)
	a := repos.MustCreateLocation(t, "A", nil, models.LocationTypeShelf)
	b := repos.MustCreateLocation(t, "B", nil, models.LocationTypeShelf)

	results, err := newLocationCodes(repos).GenerateBatch(context.Background(), []int64{b, a})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, b, results[0].ID)
	assert.Equal(t, a, results[1].ID)
	assert.NotEqual(t, results[0].Code, results[1].Code)
}

func Test_GenerateBatch_UnknownIDChangesNothing(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	a := repos.MustCreateLocation(t, "A", nil, models.LocationTypeShelf)

	//Act
	_, err := newLocationCodes(repos).GenerateBatch(ctx, []int64{a, 404})

	//Assert
	assert.ErrorIs(t, err, data.ErrNotFound)
	location, err := repos.Locations.GetLocationByID(ctx, a)
	require.NoError(t, err)
	assert.Nil(t, location.QRCodeID)
}
