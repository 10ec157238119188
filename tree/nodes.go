package tree

import "iter"

// Nodes yields the live nodes in id order
func (t *Tree[D]) Nodes() iter.Seq[NodeIdx] {
	return func(yield func(NodeIdx) bool) {
		for s := SiblingIdx(0); s < t.hwm; s++ {
			if s != 0 && !t.parents[s].valid() {
				continue
			}
			for _, n := range t.Siblings(s) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// Leaves yields the live leaves in id order
func (t *Tree[D]) Leaves() iter.Seq[NodeIdx] {
	return func(yield func(NodeIdx) bool) {
		for n := range t.Nodes() {
			if t.IsLeaf(n) && !yield(n) {
				return
			}
		}
	}
}

// NodesAtLevel yields the live nodes at level l in id order
func (t *Tree[D]) NodesAtLevel(l Level) iter.Seq[NodeIdx] {
	return func(yield func(NodeIdx) bool) {
		for n := range t.Nodes() {
			if NodeLevel(t, n) == l && !yield(n) {
				return
			}
		}
	}
}

// SiblingGroups yields the live sibling groups in id order
func (t *Tree[D]) SiblingGroups() iter.Seq[SiblingIdx] {
	return func(yield func(SiblingIdx) bool) {
		for s := SiblingIdx(0); s < t.hwm; s++ {
			if s != 0 && !t.parents[s].valid() {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}
