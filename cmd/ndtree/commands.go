package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/ndtree/ndtree/config"
	"github.com/ndtree/ndtree/log"
	"github.com/ndtree/ndtree/session"
	"github.com/ndtree/ndtree/tree"
)

// env is what a command runs against: the config and the open store
type env struct {
	cfg   *config.Config
	store session.Store
}

func (e *env) file() *session.File {
	return session.NewFile(e.store, e.cfg.FileName)
}

// run loads the config, opens the store and hands both to fn
func run(fn func(e *env) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(&env{cfg: cfg, store: store})
}

// catch turns a tree panic back into an error.  The tree that panicked
// is dropped without being written.
func catch(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ie *tree.InvariantError
		if e, ok := r.(error); ok && errors.As(e, &ie) {
			err = ie
			return
		}
		panic(r)
	}()
	return fn()
}

// forDim runs the function matching dim
func forDim(dim int64, d1, d2, d3 func() error) error {
	switch dim {
	case 1:
		return d1()
	case 2:
		return d2()
	case 3:
		return d3()
	}
	return fmt.Errorf("unsupported spatial dimension %d", dim)
}

// storedDim reads the dimension of the stored tree
func storedDim(e *env) (int64, error) {
	dim, err := e.file().Const(tree.FieldSpatialDimension)
	if errors.Is(err, session.ErrNotFound) {
		return 0, fmt.Errorf("no tree %q in %s store, run new first",
			e.cfg.FileName, e.cfg.Store)
	}
	return dim, err
}

// load reads the stored tree
func load[D tree.Dimension](e *env) (*tree.Tree[D], error) {
	capacity := e.cfg.Capacity
	nodes, err := e.file().Const(tree.FieldNoTreeNodes)
	if err != nil {
		return nil, err
	}
	if uint64(nodes) > uint64(capacity) {
		log.Log.Infof("stored tree has %d nodes, raising capacity from %d",
			nodes, capacity)
		capacity = 0
	}
	return tree.FromFile[D](e.file(), capacity)
}

// mutate loads the stored tree, applies fn and writes the result back
func mutate[D tree.Dimension](e *env, fn func(t *tree.Tree[D]) error) error {
	t, err := load[D](e)
	if err != nil {
		return err
	}
	if err := catch(func() error { return fn(t) }); err != nil {
		return err
	}
	if err := tree.ToFile(e.file(), t); err != nil {
		return err
	}
	log.Log.Infof("%s", t)
	return nil
}

// onStored runs the instantiation of fn matching the stored tree
func onStored(e *env, d1, d2, d3 func() error) error {
	dim, err := storedDim(e)
	if err != nil {
		return err
	}
	return forDim(dim, d1, d2, d3)
}

func parseNodes(args []string) ([]tree.NodeIdx, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no node ids given")
	}
	ns := make([]tree.NodeIdx, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad node id %q: %w", a, err)
		}
		ns[i] = tree.NodeIdx(v)
	}
	return ns, nil
}

// ******************************************** new

type newCmd struct {
	Uniform uint8 `long:"uniform" description:"Refine uniformly down to this level"`
	Force   bool  `long:"force" description:"Overwrite an existing tree"`
}

func (c *newCmd) Execute(args []string) error {
	return run(func(e *env) error {
		if !c.Force {
			if _, err := storedDim(e); err == nil {
				return fmt.Errorf("tree %q already exists, use --force to replace it",
					e.cfg.FileName)
			}
		}
		return forDim(int64(e.cfg.Dimension),
			func() error { return newTree[tree.D1](e, tree.Level(c.Uniform)) },
			func() error { return newTree[tree.D2](e, tree.Level(c.Uniform)) },
			func() error { return newTree[tree.D3](e, tree.Level(c.Uniform)) })
	})
}

func newTree[D tree.Dimension](e *env, uniform tree.Level) error {
	t, err := tree.New[D](e.cfg.Capacity)
	if err != nil {
		return err
	}
	err = catch(func() error {
		for l := tree.Level(0); l < uniform; l++ {
			for _, n := range slices.Collect(t.NodesAtLevel(l)) {
				t.Refine(n)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := tree.ToFile(e.file(), t); err != nil {
		return err
	}
	log.Log.Infof("created %s", t)
	return nil
}

// ******************************************** refine

type refineCmd struct {
	Balance bool `long:"balance" description:"Refine neighbors as needed to keep the tree 2:1 balanced"`
}

func (c *refineCmd) Execute(args []string) error {
	ns, err := parseNodes(args)
	if err != nil {
		return err
	}
	return run(func(e *env) error {
		return onStored(e,
			func() error { return mutate(e, refineNodes[tree.D1](ns, c.Balance)) },
			func() error { return mutate(e, refineNodes[tree.D2](ns, c.Balance)) },
			func() error { return mutate(e, refineNodes[tree.D3](ns, c.Balance)) })
	})
}

func refineNodes[D tree.Dimension](ns []tree.NodeIdx, balance bool) func(*tree.Tree[D]) error {
	return func(t *tree.Tree[D]) error {
		for _, n := range ns {
			t.Refine(n)
			if !balance {
				continue
			}
			for _, c := range t.Children(n) {
				if k := tree.Balance(t, c); k > 0 {
					log.Log.Debugf("balancing around %s refined %d nodes", c, k)
				}
			}
		}
		return nil
	}
}

// ******************************************** coarsen

type coarsenCmd struct {
	Balanced bool `long:"balanced" description:"Skip nodes whose coarsening would break the 2:1 balance"`
}

func (c *coarsenCmd) Execute(args []string) error {
	ns, err := parseNodes(args)
	if err != nil {
		return err
	}
	return run(func(e *env) error {
		return onStored(e,
			func() error { return mutate(e, coarsenNodes[tree.D1](ns, c.Balanced)) },
			func() error { return mutate(e, coarsenNodes[tree.D2](ns, c.Balanced)) },
			func() error { return mutate(e, coarsenNodes[tree.D3](ns, c.Balanced)) })
	})
}

func coarsenNodes[D tree.Dimension](ns []tree.NodeIdx, balanced bool) func(*tree.Tree[D]) error {
	return func(t *tree.Tree[D]) error {
		for _, n := range ns {
			if !balanced {
				t.Coarsen(n)
				continue
			}
			if !tree.BalancedCoarsen(t, n, nil) {
				log.Log.Warnf("skipped %s: coarsening it would unbalance the tree", n)
			}
		}
		return nil
	}
}

// ******************************************** sort

type sortCmd struct{}

func (c *sortCmd) Execute(args []string) error {
	return run(func(e *env) error {
		return onStored(e,
			func() error { return mutate(e, sortTree[tree.D1]) },
			func() error { return mutate(e, sortTree[tree.D2]) },
			func() error { return mutate(e, sortTree[tree.D3]) })
	})
}

func sortTree[D tree.Dimension](t *tree.Tree[D]) error {
	swaps := 0
	tree.DFSSort(t, func(a, b tree.NodeIdx) { swaps++ })
	log.Log.Infof("sorted with %d node swaps", swaps)
	return nil
}

// ******************************************** info

type infoCmd struct {
	Node int64 `long:"node" default:"-1" description:"Also describe this node"`
}

func (c *infoCmd) Execute(args []string) error {
	return run(func(e *env) error {
		return onStored(e,
			func() error { return info[tree.D1](e, os.Stdout, c.Node) },
			func() error { return info[tree.D2](e, os.Stdout, c.Node) },
			func() error { return info[tree.D3](e, os.Stdout, c.Node) })
	})
}

func info[D tree.Dimension](e *env, w io.Writer, node int64) error {
	if node >= math.MaxUint32 {
		return fmt.Errorf("node %d is out of range", node)
	}
	t, err := load[D](e)
	if err != nil {
		return err
	}
	var d D
	leaves := len(slices.Collect(t.Leaves()))
	fmt.Fprintf(w, "dimension:  %d\n", d.Rank())
	fmt.Fprintf(w, "nodes:      %d (%d leaves)\n", t.Size(), leaves)
	fmt.Fprintf(w, "high water: %d\n", t.HighWater())
	fmt.Fprintf(w, "capacity:   %d\n", t.Capacity())
	fmt.Fprintf(w, "compact:    %v\n", t.IsCompact())
	fmt.Fprintf(w, "sorted:     %v\n", tree.IsSorted(t))
	fmt.Fprintf(w, "balanced:   %v\n", tree.IsBalanced(t))
	for l := tree.Level(0); ; l++ {
		k := len(slices.Collect(t.NodesAtLevel(l)))
		if k == 0 {
			break
		}
		fmt.Fprintf(w, "level %2d:   %d nodes\n", l, k)
	}
	if node < 0 {
		return nil
	}

	n := tree.NodeIdx(node)
	if !t.InUse(n) {
		return fmt.Errorf("%s is not in use", n)
	}
	fmt.Fprintf(w, "\n%s\n", n)
	fmt.Fprintf(w, "location:   %s\n", tree.Location(t, n))
	if p, ok := t.Parent(n); ok {
		fmt.Fprintf(w, "parent:     %s\n", p)
	}
	if !t.IsLeaf(n) {
		fmt.Fprintf(w, "children:   %v\n", t.Children(n))
	}
	for _, m := range tree.Manifolds[D]() {
		fmt.Fprintf(w, "%-6s nbs: %v\n", m, tree.Neighbors(t, n, m))
	}
	return nil
}

// ******************************************** dot

type dotCmd struct {
	Out string `long:"out" short:"o" description:"Write to this file instead of stdout"`
}

func (c *dotCmd) Execute(args []string) error {
	return run(func(e *env) error {
		w := io.Writer(os.Stdout)
		if c.Out != "" {
			f, err := os.Create(c.Out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return onStored(e,
			func() error { return dot[tree.D1](e, w) },
			func() error { return dot[tree.D2](e, w) },
			func() error { return dot[tree.D3](e, w) })
	})
}

func dot[D tree.Dimension](e *env, w io.Writer) error {
	t, err := load[D](e)
	if err != nil {
		return err
	}
	return tree.WriteDot(w, t)
}
