package model

import (
	"context"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/pkg/errors"
)

// Tree is a binary decision tree. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Node is a split when Leaf is false, in which case the left child is taken
// for x[Feature] <= Threshold.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Value     int     `json:"value,omitempty" yaml:"value,omitempty"`
	Feature   int     `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int     `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int     `json:"right,omitempty" yaml:"right,omitempty"`
}

type forest struct {
	name  string
	trees []Tree
}

func newForest(name string, trees []Tree) (*forest, error) {
	if len(trees) == 0 {
		return nil, errors.Wrap(ErrModelUnavailable, "trees model has no trees")
	}

	f := &forest{name: name, trees: make([]Tree, len(trees))}
	for i, t := range trees {
		if err := validateTree(t); err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		f.trees[i] = Tree{Nodes: append([]Node(nil), t.Nodes...)}
	}
	return f, nil
}

// validateTree rejects trees that would index outside the vector or the node
// list, or that could loop. Children must come after their parent.
func validateTree(t Tree) error {
	if len(t.Nodes) == 0 {
		return errors.Wrap(ErrModelUnavailable, "empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			if n.Value != 0 && n.Value != 1 {
				return errors.Wrapf(ErrModelUnavailable, "node %d: leaf value %d not in {0,1}", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= patient.FeatureCount {
			return errors.Wrapf(ErrModelUnavailable, "node %d: feature index %d out of range", i, n.Feature)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return errors.Wrapf(ErrModelUnavailable, "node %d: child %d out of range", i, c)
			}
		}
	}
	return nil
}

func (f *forest) Name() string {
	return f.name
}

func (f *forest) Predict(_ context.Context, v patient.Vector) (int, error) {
	if err := checkFinite(v); err != nil {
		return 0, err
	}

	votes := 0
	for _, t := range f.trees {
		votes += t.eval(v)
	}
	if 2*votes >= len(f.trees) {
		return 1, nil
	}
	return 0, nil
}

func (t Tree) eval(v patient.Vector) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if v[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
