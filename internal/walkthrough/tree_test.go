package walkthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(steps []*Step) []int {
	out := make([]int, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return out
}

func rootIDs(forest []*StepTreeNode) []int {
	out := make([]int, len(forest))
	for i, n := range forest {
		out[i] = n.Step.ID
	}
	return out
}

// 1 -> [2 -> [4], 3]
func sampleSteps() []Step {
	return []Step{
		{ID: 1, Title: "one"},
		{ID: 2, Title: "two", ParentID: IntPtr(1)},
		{ID: 3, Title: "three", ParentID: IntPtr(1)},
		{ID: 4, Title: "four", ParentID: IntPtr(2)},
	}
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	steps := []Step{
		{ID: 1, Title: "one"},
		{ID: 2, Title: "two", ParentID: IntPtr(1)},
		{ID: 3, Title: "three", ParentID: IntPtr(99)},
	}

	forest := BuildTree(steps)
	require.Len(t, forest, 2)
	assert.Equal(t, []int{1, 3}, rootIDs(forest))
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, 2, forest[0].Children[0].Step.ID)
	assert.Empty(t, forest[1].Children)
}

func TestBuildTreeSharesSteps(t *testing.T) {
	steps := sampleSteps()
	forest := BuildTree(steps)

	steps[0].Title = "renamed"
	assert.Equal(t, "renamed", forest[0].Step.Title)
}

func TestBuildTreeKeepsSiblingOrder(t *testing.T) {
	steps := []Step{
		{ID: 10, Title: "root"},
		{ID: 5, Title: "b", ParentID: IntPtr(10)},
		{ID: 7, Title: "top"},
		{ID: 2, Title: "a", ParentID: IntPtr(10)},
	}
	forest := BuildTree(steps)
	assert.Equal(t, []int{10, 7}, rootIDs(forest))
	assert.Equal(t, []int{5, 2}, rootIDs(forest[0].Children))
}

func TestBuildTreeDuplicateIDsFirstWins(t *testing.T) {
	steps := []Step{
		{ID: 1, Title: "first"},
		{ID: 1, Title: "duplicate"},
		{ID: 2, Title: "child", ParentID: IntPtr(1)},
	}
	forest := BuildTree(steps)
	require.Len(t, forest, 2)
	assert.Equal(t, "first", forest[0].Step.Title)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "child", forest[0].Children[0].Step.Title)
	assert.Empty(t, forest[1].Children)
}

func TestBuildTreeBreaksCycles(t *testing.T) {
	steps := []Step{
		{ID: 1, Title: "a", ParentID: IntPtr(2)},
		{ID: 2, Title: "b", ParentID: IntPtr(1)},
		{ID: 3, Title: "self", ParentID: IntPtr(3)},
	}
	forest := BuildTree(steps)
	flat := Flatten(forest)
	assert.Len(t, flat, 3)
	assert.Equal(t, []int{1, 2, 3}, ids(flat))
	assert.Equal(t, []int{0, 2}, CycleBreaks(steps))
}

func TestFlattenPreOrder(t *testing.T) {
	flat := Flatten(BuildTree(sampleSteps()))
	assert.Equal(t, []int{1, 2, 4, 3}, ids(flat))
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(BuildTree(nil)))
}

func TestBuildNavigationMap(t *testing.T) {
	forest := BuildTree(sampleSteps())
	flat := Flatten(forest)
	nav := BuildNavigationMap(forest, flat)
	require.Len(t, nav, 4)

	indexOf := func(id int) int {
		for i, s := range flat {
			if s.ID == id {
				return i
			}
		}
		t.Fatalf("step %d not in flat order", id)
		return NoIndex
	}

	tests := []struct {
		id       int
		expected NavEntry
	}{
		{1, NavEntry{Parent: NoIndex, PrevSibling: NoIndex, NextSibling: NoIndex}},
		{2, NavEntry{Parent: indexOf(1), PrevSibling: NoIndex, NextSibling: indexOf(3)}},
		{4, NavEntry{Parent: indexOf(2), PrevSibling: NoIndex, NextSibling: NoIndex}},
		{3, NavEntry{Parent: indexOf(1), PrevSibling: indexOf(2), NextSibling: NoIndex}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, nav[indexOf(tt.id)], "step %d", tt.id)
	}
}

func TestBuildNavigationMapRootSiblings(t *testing.T) {
	steps := []Step{
		{ID: 1, Title: "one"},
		{ID: 2, Title: "two", ParentID: IntPtr(1)},
		{ID: 3, Title: "three"},
	}
	forest := BuildTree(steps)
	flat := Flatten(forest)
	nav := BuildNavigationMap(forest, flat)

	// flat order: 1, 2, 3
	assert.Equal(t, NavEntry{Parent: NoIndex, PrevSibling: 0, NextSibling: NoIndex}, nav[2])
	assert.Equal(t, 2, nav[0].NextSibling)
	assert.Equal(t, []int{0, 1, 0}, Depths(nav))
}
