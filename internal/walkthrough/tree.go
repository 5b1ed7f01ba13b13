package walkthrough

// NoIndex marks a missing parent or sibling in a NavEntry
const NoIndex = -1

// StepTreeNode wraps a step and its children. The step is shared with the
// caller's slice, not copied.
type StepTreeNode struct {
	Step     *Step
	Children []*StepTreeNode
}

// NavEntry holds flat-order indices for hierarchical navigation
type NavEntry struct {
	Parent      int `json:"parent"`
	PrevSibling int `json:"prevSibling"`
	NextSibling int `json:"nextSibling"`
}

// BuildTree turns the flat step list into a forest using each step's ParentID.
//
// Siblings keep their order from steps. A step whose parent id does not exist
// becomes a root. When ids repeat, the first step with that id is the one
// children attach to. Parent cycles are cut at the first cycle member reached
// in source order, which becomes a root; no step is ever dropped.
func BuildTree(steps []Step) []*StepTreeNode {
	nodes := make([]*StepTreeNode, len(steps))
	byID := make(map[int]int, len(steps))
	for i := range steps {
		nodes[i] = &StepTreeNode{Step: &steps[i]}
		if _, exists := byID[steps[i].ID]; !exists {
			byID[steps[i].ID] = i
		}
	}

	parents, _ := resolveParents(steps, byID)

	var roots []*StepTreeNode
	for i, node := range nodes {
		if p := parents[i]; p != NoIndex {
			nodes[p].Children = append(nodes[p].Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

// resolveParents maps each step position to its parent's position, or NoIndex,
// and returns the positions where a parent cycle was cut. Each step has at most
// one parent, so every cycle is found by a single walk up the parent chain.
func resolveParents(steps []Step, byID map[int]int) (parents []int, cut []int) {
	parents = make([]int, len(steps))
	for i := range steps {
		parents[i] = NoIndex
		if pid := steps[i].ParentID; pid != nil {
			if p, ok := byID[*pid]; ok {
				parents[i] = p
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(steps))
	var path []int
	for i := range steps {
		path = path[:0]
		cur := i
		for cur != NoIndex && state[cur] == unvisited {
			state[cur] = visiting
			path = append(path, cur)
			cur = parents[cur]
		}
		if cur != NoIndex && state[cur] == visiting {
			parents[cur] = NoIndex
			cut = append(cut, cur)
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return parents, cut
}

// CycleBreaks returns the positions in steps that BuildTree promotes to roots
// because their parent chain loops back on itself
func CycleBreaks(steps []Step) []int {
	byID := make(map[int]int, len(steps))
	for i := range steps {
		if _, exists := byID[steps[i].ID]; !exists {
			byID[steps[i].ID] = i
		}
	}
	_, cut := resolveParents(steps, byID)
	return cut
}

// Flatten returns the steps in pre-order depth-first order. This is the
// linear next/previous navigation order.
func Flatten(forest []*StepTreeNode) []*Step {
	var out []*Step
	var visit func(nodes []*StepTreeNode)
	visit = func(nodes []*StepTreeNode) {
		for _, n := range nodes {
			out = append(out, n.Step)
			visit(n.Children)
		}
	}
	visit(forest)
	return out
}

// BuildNavigationMap records, for every flat index, the flat indices of the
// step's parent and immediate siblings. It walks the forest in the same order
// as Flatten, so flat must be Flatten(forest).
func BuildNavigationMap(forest []*StepTreeNode, flat []*Step) []NavEntry {
	nav := make([]NavEntry, len(flat))
	next := 0

	var visit func(nodes []*StepTreeNode, parent int)
	visit = func(nodes []*StepTreeNode, parent int) {
		prev := NoIndex
		for _, n := range nodes {
			idx := next
			next++
			nav[idx] = NavEntry{Parent: parent, PrevSibling: prev, NextSibling: NoIndex}
			if prev != NoIndex {
				nav[prev].NextSibling = idx
			}
			visit(n.Children, idx)
			prev = idx
		}
	}
	visit(forest, NoIndex)
	return nav
}

// Depths returns the nesting depth of every flat index, roots at 0
func Depths(nav []NavEntry) []int {
	depths := make([]int, len(nav))
	for i, e := range nav {
		if e.Parent != NoIndex {
			depths[i] = depths[e.Parent] + 1
		}
	}
	return depths
}
