// Package tree implements single-feature CART fitting for the decision-tree
// binning strategy. Trees are grown best-first under a leaf budget, so a
// budget of k leaves yields at most k-1 split thresholds concentrated where
// they best separate the target.
package tree

import (
	"sort"

	pkgerrors "github.com/YuminosukeSato/tabgo/pkg/errors"
)

// Task selects the impurity criterion.
type Task int

const (
	// Regression grows the tree with variance-reduction gain.
	Regression Task = iota
	// Classification grows the tree with Gini-impurity gain.
	Classification
)

// String returns the task name.
func (t Task) String() string {
	if t == Classification {
		return "classification"
	}
	return "regression"
}

// Options configures tree growth. The zero value means: no leaf budget, no
// depth limit, minimum one sample per leaf.
type Options struct {
	// MaxLeafNodes caps the number of leaves; 0 means unlimited. Callers of
	// the binning strategy must leave this zero, it is derived from the bin
	// count there.
	MaxLeafNodes int

	// MinSamplesLeaf is the minimum number of samples on each side of a
	// split; values below 1 are treated as 1.
	MinSamplesLeaf int

	// MaxDepth caps the tree depth; 0 means unlimited.
	MaxDepth int
}

// Node is one node of a fitted tree. A leaf has both child indices set to
// -1; internal nodes route x <= Threshold to Left and the rest to Right.
type Node struct {
	Threshold float64
	Left      int
	Right     int
	Value     float64 // leaf prediction: mean (regression) or majority label
}

// IsLeaf reports whether the node is a leaf.
func (n Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Tree is a fitted single-feature decision tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node
}

// NumLeaves returns the number of leaf nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// SplitThresholds returns the thresholds of all internal nodes, in node
// order. Leaves contribute nothing.
func (t *Tree) SplitThresholds() []float64 {
	var ts []float64
	for _, n := range t.Nodes {
		if !n.IsLeaf() {
			ts = append(ts, n.Threshold)
		}
	}
	return ts
}

// Predict routes v through the tree and returns the leaf value.
func (t *Tree) Predict(v float64) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.IsLeaf() {
			return n.Value
		}
		if v <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// split describes the best split found for one frontier leaf.
type split struct {
	ok        bool
	pos       int // boundary within the sorted sample list: left = [0,pos)
	threshold float64
	gain      float64
}

// candidate is a frontier leaf awaiting possible expansion.
type candidate struct {
	nodeIdx int
	samples []int // indices into x/y, sorted by x
	depth   int
	best    split
}

// Fit grows a decision tree on a single feature column x against the target
// y. For Classification, y holds integer-valued class labels.
func Fit(x, y []float64, task Task, opts Options) (*Tree, error) {
	if len(x) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.ErrEmptyData, "tree.Fit")
	}
	if len(x) != len(y) {
		return nil, pkgerrors.NewDimensionError("tree.Fit", len(x), len(y), 0)
	}
	if opts.MaxLeafNodes < 0 {
		return nil, pkgerrors.NewValidationError("MaxLeafNodes", "must be non-negative", opts.MaxLeafNodes)
	}
	minLeaf := opts.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })

	g := &grower{x: x, y: y, task: task, minLeaf: minLeaf}
	t := &Tree{Nodes: []Node{{Left: -1, Right: -1, Value: g.leafValue(order)}}}

	frontier := []*candidate{{nodeIdx: 0, samples: order, depth: 0, best: g.bestSplit(order)}}
	leaves := 1
	for len(frontier) > 0 {
		if opts.MaxLeafNodes > 0 && leaves >= opts.MaxLeafNodes {
			break
		}

		// Expand the frontier leaf with the highest gain.
		bestIdx := -1
		for i, c := range frontier {
			if !c.best.ok {
				continue
			}
			if bestIdx < 0 || c.best.gain > frontier[bestIdx].best.gain {
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		c := frontier[bestIdx]
		frontier = append(frontier[:bestIdx], frontier[bestIdx+1:]...)

		left := c.samples[:c.best.pos]
		right := c.samples[c.best.pos:]
		leftIdx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1, Value: g.leafValue(left)})
		rightIdx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1, Value: g.leafValue(right)})
		t.Nodes[c.nodeIdx].Threshold = c.best.threshold
		t.Nodes[c.nodeIdx].Left = leftIdx
		t.Nodes[c.nodeIdx].Right = rightIdx
		leaves++

		depth := c.depth + 1
		if opts.MaxDepth == 0 || depth < opts.MaxDepth {
			frontier = append(frontier,
				&candidate{nodeIdx: leftIdx, samples: left, depth: depth, best: g.bestSplit(left)},
				&candidate{nodeIdx: rightIdx, samples: right, depth: depth, best: g.bestSplit(right)})
		}
	}
	return t, nil
}

type grower struct {
	x, y    []float64
	task    Task
	minLeaf int
}

// leafValue is the prediction stored on a leaf: the target mean for
// regression, the majority label for classification.
func (g *grower) leafValue(samples []int) float64 {
	if g.task == Classification {
		counts := make(map[float64]int)
		for _, i := range samples {
			counts[g.y[i]]++
		}
		best, bestCount := 0.0, -1
		for label, count := range counts {
			if count > bestCount || (count == bestCount && label < best) {
				best, bestCount = label, count
			}
		}
		return best
	}
	sum := 0.0
	for _, i := range samples {
		sum += g.y[i]
	}
	return sum / float64(len(samples))
}

// bestSplit scans every boundary between distinct x values and keeps the
// split with the largest impurity decrease. Thresholds are midpoints
// between adjacent distinct values.
func (g *grower) bestSplit(samples []int) split {
	if len(samples) < 2*g.minLeaf {
		return split{}
	}
	if g.task == Classification {
		return g.bestSplitGini(samples)
	}
	return g.bestSplitVariance(samples)
}

func (g *grower) bestSplitVariance(samples []int) split {
	n := len(samples)
	totalSum, totalSq := 0.0, 0.0
	for _, i := range samples {
		totalSum += g.y[i]
		totalSq += g.y[i] * g.y[i]
	}
	parentSSE := totalSq - totalSum*totalSum/float64(n)

	best := split{gain: 0}
	leftSum, leftSq := 0.0, 0.0
	for pos := 1; pos < n; pos++ {
		i := samples[pos-1]
		leftSum += g.y[i]
		leftSq += g.y[i] * g.y[i]

		prev, cur := g.x[samples[pos-1]], g.x[samples[pos]]
		if prev == cur {
			continue
		}
		if pos < g.minLeaf || n-pos < g.minLeaf {
			continue
		}

		rightSum := totalSum - leftSum
		rightSq := totalSq - leftSq
		leftSSE := leftSq - leftSum*leftSum/float64(pos)
		rightSSE := rightSq - rightSum*rightSum/float64(n-pos)
		gain := parentSSE - leftSSE - rightSSE
		if gain > best.gain {
			best = split{ok: true, pos: pos, threshold: (prev + cur) / 2, gain: gain}
		}
	}
	return best
}

func (g *grower) bestSplitGini(samples []int) split {
	n := len(samples)
	total := make(map[float64]int)
	for _, i := range samples {
		total[g.y[i]]++
	}
	parent := giniImpurity(total, n)

	best := split{gain: 0}
	left := make(map[float64]int)
	leftN := 0
	for pos := 1; pos < n; pos++ {
		left[g.y[samples[pos-1]]]++
		leftN++

		prev, cur := g.x[samples[pos-1]], g.x[samples[pos]]
		if prev == cur {
			continue
		}
		if pos < g.minLeaf || n-pos < g.minLeaf {
			continue
		}

		rightN := n - leftN
		leftGini := giniImpurity(left, leftN)
		rightGini := giniRemainder(total, left, rightN)
		gain := parent - (float64(leftN)*leftGini+float64(rightN)*rightGini)/float64(n)
		if gain > best.gain && gain > 1e-12 {
			best = split{ok: true, pos: pos, threshold: (prev + cur) / 2, gain: gain}
		}
	}
	return best
}

func giniImpurity(counts map[float64]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sumSq += p * p
	}
	return 1 - sumSq
}

// giniRemainder computes the impurity of the right partition from the total
// and left label counts without materializing a third map.
func giniRemainder(total, left map[float64]int, rightN int) float64 {
	if rightN == 0 {
		return 0
	}
	sumSq := 0.0
	for label, c := range total {
		r := c - left[label]
		if r <= 0 {
			continue
		}
		p := float64(r) / float64(rightN)
		sumSq += p * p
	}
	return 1 - sumSq
}
