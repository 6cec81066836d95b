package labels_test

import (
	"context"
	"fmt"
	"testing"

	"inventory/lib/data"
	"inventory/lib/labels"
	"inventory/lib/models"
	"inventory/lib/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComposer(repos *testutil.Repositories) *labels.Composer {
	return &labels.Composer{
		Items:     repos.Items,
		Locations: repos.Locations,
		QRCodes:   repos.QRCodes,
		Logger:    testutil.NewTestLogger(),
	}
}

func createItems(t *testing.T, repos *testutil.Repositories, count int, locationID *int64) []int64 {
	t.Helper()
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, repos.MustCreateItem(t, &models.ItemInput{
			Name:       fmt.Sprintf("Part %02d", i),
			Quantity:   i + 1,
			LocationID: locationID,
		}))
	}
	return ids
}

func Test_Compose_PadsLastPage(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 10, nil)

	//Act
	sheet, err := newComposer(repos).Compose(context.Background(), &models.LabelRequest{ItemIDs: ids, Columns: 3, Rows: 4}, labels.PaperA4)

	//Assert
	require.NoError(t, err)
	require.Len(t, sheet.Pages, 1)
	require.Len(t, sheet.Pages[0], 12)
	assert.Equal(t, 10, sheet.Labels)
	assert.Nil(t, sheet.Pages[0][10])
	assert.Nil(t, sheet.Pages[0][11])
	for i, id := range ids {
		assert.Equal(t, id, sheet.Pages[0][i].ItemID)
		assert.Equal(t, labels.DefaultUnit, sheet.Pages[0][i].Unit)
	}
}

func Test_Compose_SpillsOntoSecondPage(t *testing.T) {
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 13, nil)

	sheet, err := newComposer(repos).Compose(context.Background(), &models.LabelRequest{ItemIDs: ids, Columns: 3, Rows: 4}, labels.PaperA4)

	require.NoError(t, err)
	require.Len(t, sheet.Pages, 2)
	assert.Equal(t, ids[12], sheet.Pages[1][0].ItemID)
	assert.Nil(t, sheet.Pages[1][1])

	first := sheet.FirstPage()
	assert.Len(t, first.Pages, 1)
	assert.Equal(t, 12, first.Labels)
	assert.Len(t, sheet.Pages, 2)
}

func Test_Compose_AssignsMissingLocationCodes(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	boxID := repos.MustCreateLocation(t, "Bin 4", nil, models.LocationTypeBox)
	ids := createItems(t, repos, 2, &boxID)

	//Act
	sheet, err := newComposer(repos).Compose(ctx, &models.LabelRequest{ItemIDs: ids, Columns: 2, Rows: 1}, labels.PaperA4)

	//Assert
	require.NoError(t, err)
	location, err := repos.Locations.GetLocationByID(ctx, boxID)
	require.NoError(t, err)
	require.NotNil(t, location.QRCodeID)
	for _, label := range sheet.Pages[0] {
		assert.Equal(t, "Bin 4", label.LocationName)
		assert.Equal(t, *location.QRCodeID, label.QRCode)
	}
	assert.False(t, sheet.Stamp.Before(location.UpdatedAt))
}

func Test_Compose_Errors(t *testing.T) {
	repos := testutil.NewRepositories(t)
	ids := createItems(t, repos, 1, nil)
	composer := newComposer(repos)

	cases := []struct {
		name     string
		req      *models.LabelRequest
		expected error
	}{
		{"empty selection", &models.LabelRequest{Columns: 3, Rows: 4}, data.ErrEmptySelection},
		{"empty selection beats bad grid", &models.LabelRequest{Columns: 0, Rows: 0}, data.ErrEmptySelection},
		{"zero columns", &models.LabelRequest{ItemIDs: ids, Columns: 0, Rows: 4}, data.ErrInvalidConfig},
		{"too many columns", &models.LabelRequest{ItemIDs: ids, Columns: 11, Rows: 4}, data.ErrInvalidConfig},
		{"too many rows", &models.LabelRequest{ItemIDs: ids, Columns: 3, Rows: 21}, data.ErrInvalidConfig},
		{"unknown item", &models.LabelRequest{ItemIDs: append(ids, 9999), Columns: 3, Rows: 4}, data.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sheet, err := composer.Compose(context.Background(), tc.req, labels.PaperA4)

			assert.ErrorIs(t, err, tc.expected)
			assert.Nil(t, sheet)
		})
	}
}

func Test_LookupPaperSize(t *testing.T) {
	cases := []struct {
		name     string
		expected labels.PaperSize
	}{
		{"", labels.PaperA4},
		{"a4", labels.PaperA4},
		{"LETTER", labels.PaperLetter},
		{" A5 ", labels.PaperA5},
	}
	for _, tc := range cases {
		size, err := labels.LookupPaperSize(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, size)
	}

	_, err := labels.LookupPaperSize("B5")
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
}
