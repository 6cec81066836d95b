package data

import (
	"fmt"
	"sort"

	"inventory/lib/models"
)

// locationEdge is the minimal row needed to walk the hierarchy
type locationEdge struct {
	ID       int64  `db:"id"`
	ParentID *int64 `db:"parent_id"`
}

// locationTree indexes locations by id and by parent id so subtree walks
// are map lookups rather than pointer chasing
type locationTree struct {
	parents  map[int64]*int64
	children map[int64][]int64
	roots    []int64
}

func newLocationTree(edges []locationEdge) *locationTree {
	tree := &locationTree{
		parents:  make(map[int64]*int64, len(edges)),
		children: make(map[int64][]int64),
	}
	for _, edge := range edges {
		tree.parents[edge.ID] = edge.ParentID
		if edge.ParentID == nil {
			tree.roots = append(tree.roots, edge.ID)
			continue
		}
		tree.children[*edge.ParentID] = append(tree.children[*edge.ParentID], edge.ID)
	}
	sort.Slice(tree.roots, func(i, j int) bool { return tree.roots[i] < tree.roots[j] })
	for parent := range tree.children {
		kids := tree.children[parent]
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}
	return tree
}

func (t *locationTree) has(id int64) bool {
	_, ok := t.parents[id]
	return ok
}

// subtree returns rootID and every transitive descendant in breadth-first
// order. Reaching a node twice means the parent links loop back on
// themselves, which is reported as ErrIntegrity.
func (t *locationTree) subtree(rootID int64) ([]int64, error) {
	if !t.has(rootID) {
		return nil, fmt.Errorf("%w: location %d", ErrNotFound, rootID)
	}

	visited := map[int64]bool{rootID: true}
	order := []int64{rootID}
	for i := 0; i < len(order); i++ {
		for _, child := range t.children[order[i]] {
			if visited[child] {
				return nil, fmt.Errorf("%w: location %d is reachable twice below %d", ErrIntegrity, child, rootID)
			}
			visited[child] = true
			order = append(order, child)
		}
	}
	return order, nil
}

// depth follows parent links up to a root. The walk is capped at the number
// of known locations so a cycle fails instead of looping.
func (t *locationTree) depth(id int64) (int, error) {
	if !t.has(id) {
		return 0, fmt.Errorf("%w: location %d", ErrNotFound, id)
	}
	steps := 0
	current := id
	for {
		parent := t.parents[current]
		if parent == nil {
			return steps, nil
		}
		if !t.has(*parent) {
			return 0, fmt.Errorf("%w: location %d references missing parent %d", ErrIntegrity, current, *parent)
		}
		steps++
		if steps > len(t.parents) {
			return 0, fmt.Errorf("%w: cycle detected above location %d", ErrIntegrity, id)
		}
		current = *parent
	}
}

// validate checks that every location reaches a root
func (t *locationTree) validate() error {
	for id := range t.parents {
		if _, err := t.depth(id); err != nil {
			return err
		}
	}
	return nil
}

// topological returns ids with every parent ahead of its children
func (t *locationTree) topological() []int64 {
	order := make([]int64, 0, len(t.parents))
	queue := append([]int64(nil), t.roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		queue = append(queue, t.children[id]...)
	}
	return order
}

// buildForest nests a flat, name-ordered location list into trees.
// Locations whose parent is not in the list are treated as roots.
func buildForest(locations []models.Location) []*models.LocationNode {
	nodes := make(map[int64]*models.LocationNode, len(locations))
	for _, location := range locations {
		nodes[location.ID] = &models.LocationNode{Location: location}
	}

	var forest []*models.LocationNode
	for _, location := range locations {
		node := nodes[location.ID]
		if location.ParentID != nil {
			if parent, ok := nodes[*location.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		forest = append(forest, node)
	}
	return forest
}
