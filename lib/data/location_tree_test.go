package data

import (
	"testing"

	"inventory/lib/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func sampleTree() *locationTree {
	// 1 -> 2 -> 3, 1 -> 4, 5
	return newLocationTree([]locationEdge{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(1)},
		{ID: 5},
	})
}

func Test_Subtree_CollectsAllDescendants(t *testing.T) {
	tree := sampleTree()

	ids, err := tree.subtree(1)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4, 3}, ids)
}

func Test_Subtree_LeafAndUnknown(t *testing.T) {
	tree := sampleTree()

	ids, err := tree.subtree(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)

	_, err = tree.subtree(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_Subtree_CycleIsIntegrityError(t *testing.T) {
	// 2 and 3 are each other's parent
	tree := newLocationTree([]locationEdge{
		{ID: 1},
		{ID: 2, ParentID: ptr(3)},
		{ID: 3, ParentID: ptr(2)},
	})

	_, err := tree.subtree(2)

	assert.ErrorIs(t, err, ErrIntegrity)
}

func Test_Depth_BoundedByLocationCount(t *testing.T) {
	tree := sampleTree()

	depth, err := tree.depth(3)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	for id := range tree.parents {
		d, err := tree.depth(id)
		require.NoError(t, err)
		assert.LessOrEqual(t, d, len(tree.parents))
	}
}

func Test_Validate_DetectsCycleAndDanglingParent(t *testing.T) {
	cyclic := newLocationTree([]locationEdge{
		{ID: 1, ParentID: ptr(2)},
		{ID: 2, ParentID: ptr(1)},
	})
	assert.ErrorIs(t, cyclic.validate(), ErrIntegrity)

	dangling := newLocationTree([]locationEdge{
		{ID: 1, ParentID: ptr(7)},
	})
	assert.ErrorIs(t, dangling.validate(), ErrIntegrity)

	assert.NoError(t, sampleTree().validate())
}

func Test_Topological_ParentsFirst(t *testing.T) {
	tree := sampleTree()

	order := tree.topological()

	position := map[int64]int{}
	for i, id := range order {
		position[id] = i
	}
	require.Len(t, order, 5)
	for id, parent := range tree.parents {
		if parent != nil {
			assert.Less(t, position[*parent], position[id], "parent of %d", id)
		}
	}
}

func Test_BuildForest_NestsChildren(t *testing.T) {
	locations := []models.Location{
		{ID: 2, Name: "Box A", ParentID: ptr(1)},
		{ID: 4, Name: "Box B", ParentID: ptr(1)},
		{ID: 3, Name: "Compartment", ParentID: ptr(2)},
		{ID: 1, Name: "Shelf"},
		{ID: 9, Name: "Stray", ParentID: ptr(42)},
	}

	forest := buildForest(locations)

	require.Len(t, forest, 2)
	assert.Equal(t, "Shelf", forest[0].Name)
	assert.Equal(t, "Stray", forest[1].Name)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "Box A", forest[0].Children[0].Name)
	assert.Equal(t, "Box B", forest[0].Children[1].Name)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "Compartment", forest[0].Children[0].Children[0].Name)
}
