package tree

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDot writes the live part of t as a graphviz digraph.  Each sibling
// group is a record with one field per node, and each refined node has a
// two-way edge to the group of its children.
//
//	dot -Tsvg tree.dot > tree.svg
func WriteDot[D Dimension](w io.Writer, t *Tree[D]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "strict digraph tree {\nconcentrate=true;\n")

	for s := range t.SiblingGroups() {
		fmt.Fprintf(bw, "g%d[label=\"<gg%d> %d* ", s, s, s)
		for _, n := range t.Siblings(s) {
			fmt.Fprintf(bw, "|<s%d> %d", n, n)
		}
		fmt.Fprintf(bw, "\", shape=record];\n")
	}

	for s := range t.SiblingGroups() {
		for _, n := range t.Siblings(s) {
			cg, ok := t.ChildrenGroup(n)
			if !ok {
				continue
			}
			fmt.Fprintf(bw, "g%d:s%d -> g%d [dir=\"both\"];\n", s, n, cg)
		}
	}

	fmt.Fprintf(bw, "}\n")
	return bw.Flush()
}
