// Command ndtree builds and inspects adaptive mesh trees kept in a session
// store.
//
//	ndtree new --dim 2 --uniform 3
//	ndtree refine --balance 5 9
//	ndtree coarsen --balanced 5
//	ndtree sort
//	ndtree info --node 9
//	ndtree dot -o tree.dot
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(&opts, flags.Default)

	commands := []struct {
		name, short, long string
		cmd               interface{}
	}{
		{"new", "Create a tree",
			"Create a tree holding just the root, or refined uniformly with --uniform.",
			&newCmd{}},
		{"refine", "Refine leaves",
			"Refine each given leaf, in order.",
			&refineCmd{}},
		{"coarsen", "Coarsen nodes",
			"Coarsen each given node, in order.  Its children must be leaves.",
			&coarsenCmd{}},
		{"sort", "Sort in depth first order",
			"Renumber the nodes in depth first order, closing the holes left by coarsening.",
			&sortCmd{}},
		{"info", "Describe the tree",
			"Print sizes, level counts and checks for the tree, and optionally one node.",
			&infoCmd{}},
		{"dot", "Export graphviz",
			"Write the tree as a graphviz digraph.",
			&dotCmd{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		// flags.Default already printed it
		os.Exit(1)
	}
}
