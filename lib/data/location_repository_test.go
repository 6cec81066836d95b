package data_test

import (
	"context"
	"testing"

	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateLocation_Success(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()

	//Act
	shelfID, err := repos.Locations.CreateLocation(ctx, &models.CreateLocationRequest{
		Name:         "Shelf A",
		LocationType: models.LocationTypeShelf,
		Description:  testutil.String("garage, left wall"),
	})

	//Assert
	require.NoError(t, err)
	location, err := repos.Locations.GetLocationByID(ctx, shelfID)
	require.NoError(t, err)
	assert.Equal(t, "Shelf A", location.Name)
	assert.Nil(t, location.ParentID)
	assert.Nil(t, location.QRCodeID)
	assert.Equal(t, "garage, left wall", *location.Description)
	assert.False(t, location.CreatedAt.IsZero())
}

func Test_CreateLocation_InvalidParent(t *testing.T) {
	repos := testutil.NewRepositories(t)

	_, err := repos.Locations.CreateLocation(context.Background(), &models.CreateLocationRequest{
		Name:         "Orphan box",
		ParentID:     testutil.Int64(404),
		LocationType: models.LocationTypeBox,
	})

	assert.ErrorIs(t, err, data.ErrInvalidParent)
}

func Test_CreateLocation_InvalidInput(t *testing.T) {
	repos := testutil.NewRepositories(t)

	_, err := repos.Locations.CreateLocation(context.Background(), &models.CreateLocationRequest{
		Name:         "Drawer",
		LocationType: "drawer",
	})
	assert.ErrorIs(t, err, data.ErrInvalidInput)

	_, err = repos.Locations.CreateLocation(context.Background(), &models.CreateLocationRequest{
		Name:         "  ",
		LocationType: models.LocationTypeShelf,
	})
	assert.ErrorIs(t, err, data.ErrInvalidInput)
}

func Test_UpdateLocation_ChangesNameAndDescriptionOnly(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	shelfID := repos.MustCreateLocation(t, "Shelf", nil, models.LocationTypeShelf)
	boxID := repos.MustCreateLocation(t, "Box", &shelfID, models.LocationTypeBox)

	//Act
	updated, err := repos.Locations.UpdateLocation(ctx, boxID, &models.UpdateLocationRequest{
		Name:        "Resistor box",
		Description: testutil.String("E12 series"),
	})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "Resistor box", updated.Name)
	assert.Equal(t, "E12 series", *updated.Description)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, shelfID, *updated.ParentID)
	assert.Equal(t, models.LocationTypeBox, updated.LocationType)
}

func Test_UpdateLocation_NotFound(t *testing.T) {
	repos := testutil.NewRepositories(t)

	_, err := repos.Locations.UpdateLocation(context.Background(), 77, &models.UpdateLocationRequest{Name: "x"})

	assert.ErrorIs(t, err, data.ErrNotFound)
}

func Test_DeleteLocation_CascadesThroughThreeLevels(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	rootID := repos.MustCreateLocation(t, "Root shelf", nil, models.LocationTypeShelf)
	boxID := repos.MustCreateLocation(t, "Box", &rootID, models.LocationTypeBox)
	compartmentID := repos.MustCreateLocation(t, "Compartment", &boxID, models.LocationTypeCompartment)

	//Act
	result, err := repos.Locations.DeleteLocation(ctx, rootID)

	//Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{rootID, boxID, compartmentID}, result.DeletedLocationIDs)
	locations, err := repos.Locations.GetLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func Test_DeleteLocation_LeavesSiblingsAndDetachesItems(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	shelfID := repos.MustCreateLocation(t, "Shelf", nil, models.LocationTypeShelf)
	keepID := repos.MustCreateLocation(t, "Keep box", &shelfID, models.LocationTypeBox)
	dropID := repos.MustCreateLocation(t, "Drop box", &shelfID, models.LocationTypeBox)
	innerID := repos.MustCreateLocation(t, "Inner", &dropID, models.LocationTypeCompartment)
	otherShelfID := repos.MustCreateLocation(t, "Other shelf", nil, models.LocationTypeShelf)

	keptItem := repos.MustCreateItem(t, &models.ItemInput{Name: "Screws", Quantity: 10, LocationID: &keepID})
	innerItem := repos.MustCreateItem(t, &models.ItemInput{Name: "Fuses", Quantity: 4, LocationID: &innerID})
	dropItem := repos.MustCreateItem(t, &models.ItemInput{Name: "Tape", Quantity: 1, LocationID: &dropID})

	//Act
	result, err := repos.Locations.DeleteLocation(ctx, dropID)

	//Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{dropID, innerID}, result.DeletedLocationIDs)
	assert.Equal(t, int64(2), result.DetachedItems)

	locations, err := repos.Locations.GetLocations(ctx)
	require.NoError(t, err)
	var remaining []int64
	for _, l := range locations {
		remaining = append(remaining, l.ID)
	}
	assert.ElementsMatch(t, []int64{shelfID, keepID, otherShelfID}, remaining)

	item, err := repos.Items.GetItemByID(ctx, keptItem)
	require.NoError(t, err)
	assert.Equal(t, keepID, *item.LocationID)

	for _, id := range []int64{innerItem, dropItem} {
		item, err := repos.Items.GetItemByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, item.LocationID)
	}
}

func Test_DeleteLocation_NotFound(t *testing.T) {
	repos := testutil.NewRepositories(t)

	_, err := repos.Locations.DeleteLocation(context.Background(), 12345)

	assert.ErrorIs(t, err, data.ErrNotFound)
}

func Test_GetLocations_OrderedByName(t *testing.T) {
	repos := testutil.NewRepositories(t)
	repos.MustCreateLocation(t, "Charlie", nil, models.LocationTypeShelf)
	repos.MustCreateLocation(t, "Alpha", nil, models.LocationTypeShelf)
	repos.MustCreateLocation(t, "Bravo", nil, models.LocationTypeShelf)

	locations, err := repos.Locations.GetLocations(context.Background())

	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, "Alpha", locations[0].Name)
	assert.Equal(t, "Bravo", locations[1].Name)
	assert.Equal(t, "Charlie", locations[2].Name)
}

func Test_GetLocationTree(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	shelfID := repos.MustCreateLocation(t, "Shelf", nil, models.LocationTypeShelf)
	boxID := repos.MustCreateLocation(t, "Box", &shelfID, models.LocationTypeBox)
	repos.MustCreateLocation(t, "Slot 1", &boxID, models.LocationTypeCompartment)
	repos.MustCreateLocation(t, "Annex", nil, models.LocationTypeShelf)

	//Act
	forest, err := repos.Locations.GetLocationTree(context.Background())

	//Assert
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, "Annex", forest[0].Name)
	assert.Equal(t, "Shelf", forest[1].Name)
	require.Len(t, forest[1].Children, 1)
	assert.Equal(t, "Box", forest[1].Children[0].Name)
	require.Len(t, forest[1].Children[0].Children, 1)
	assert.Equal(t, "Slot 1", forest[1].Children[0].Children[0].Name)
}

func Test_ParentChainTerminatesWithinLocationCount(t *testing.T) {
	//Arrange
	repos := testutil.NewRepositories(t)
	ctx := context.Background()
	parent := repos.MustCreateLocation(t, "L0", nil, models.LocationTypeShelf)
	for i := 1; i < 6; i++ {
		parent = repos.MustCreateLocation(t, "L", &parent, models.LocationTypeCompartment)
	}

	//Act
	locations, err := repos.Locations.GetLocations(ctx)
	require.NoError(t, err)

	//Assert
	byID := map[int64]models.Location{}
	for _, l := range locations {
		byID[l.ID] = l
	}
	for _, l := range locations {
		steps := 0
		current := l
		for current.ParentID != nil {
			current = byID[*current.ParentID]
			steps++
			require.LessOrEqual(t, steps, len(locations))
		}
	}
}
