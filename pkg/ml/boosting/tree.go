package boosting

import (
	"sort"
)

// Node is one entry of a flattened regression tree. Root is Nodes[0].
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x[Feature] <= Threshold goes left
	Left      int
	Right     int
	Value     float64
	Samples   int
}

// Tree is a CART regression tree stored as a flat node slice so that it
// round-trips through gob without pointer graphs.
type Tree struct {
	Nodes []Node
}

// Apply returns the index of the leaf x falls into.
func (t *Tree) Apply(x []float64) int {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

// Predict returns the value of the leaf x falls into.
func (t *Tree) Predict(x []float64) float64 {
	return t.Nodes[t.Apply(x)].Value
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Leaf {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// treeBuilder grows one tree on the pseudo-residuals g.
//
// Each feature keeps its own sample order, sorted once per Fit and
// stably partitioned at every split, so no node re-sorts.
type treeBuilder struct {
	X               [][]float64
	g               []float64
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int

	tree     *Tree
	leafRows map[int][]int
	goesLeft []bool
}

// presort returns, for every feature, the row indices ordered by that feature.
// Ties keep row order so the result is deterministic.
func presort(X [][]float64, rows []int) [][]int {
	nFeatures := len(X[0])
	sorted := make([][]int, nFeatures)
	for f := 0; f < nFeatures; f++ {
		idx := append([]int(nil), rows...)
		sort.SliceStable(idx, func(a, b int) bool { return X[idx[a]][f] < X[idx[b]][f] })
		sorted[f] = idx
	}
	return sorted
}

func (b *treeBuilder) build(sorted [][]int) (*Tree, map[int][]int) {
	b.tree = &Tree{}
	b.leafRows = make(map[int][]int)
	b.goesLeft = make([]bool, len(b.X))
	b.grow(sorted, 0)
	return b.tree, b.leafRows
}

type split struct {
	feature     int
	threshold   float64
	improvement float64
	nLeft       int
}

func (b *treeBuilder) grow(sorted [][]int, depth int) int {
	rows := sorted[0]
	n := len(rows)

	sum := 0.0
	for _, r := range rows {
		sum += b.g[r]
	}

	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Samples: n, Value: sum / float64(n)})

	if depth >= b.maxDepth || n < b.minSamplesSplit || n < 2*b.minSamplesLeaf {
		return b.makeLeaf(id, rows)
	}

	best, ok := b.bestSplit(sorted, sum)
	if !ok {
		return b.makeLeaf(id, rows)
	}

	// mark membership from the winning feature's order, then partition every feature
	order := sorted[best.feature]
	for k, r := range order {
		b.goesLeft[r] = k < best.nLeft
	}
	left := make([][]int, len(sorted))
	right := make([][]int, len(sorted))
	for f, idx := range sorted {
		l := make([]int, 0, best.nLeft)
		r := make([]int, 0, n-best.nLeft)
		for _, row := range idx {
			if b.goesLeft[row] {
				l = append(l, row)
			} else {
				r = append(r, row)
			}
		}
		left[f], right[f] = l, r
	}

	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)

	node := &b.tree.Nodes[id]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = leftID
	node.Right = rightID
	return id
}

func (b *treeBuilder) makeLeaf(id int, rows []int) int {
	b.tree.Nodes[id].Leaf = true
	b.leafRows[id] = append([]int(nil), rows...)
	return id
}

// bestSplit scans every feature in order and keeps the first split with the
// highest Friedman improvement: nL*nR*(meanL-meanR)^2 / (nL+nR).
func (b *treeBuilder) bestSplit(sorted [][]int, total float64) (split, bool) {
	n := len(sorted[0])
	best := split{feature: -1}

	for f, idx := range sorted {
		sumLeft := 0.0
		for k := 0; k < n-1; k++ {
			sumLeft += b.g[idx[k]]
			nLeft := k + 1
			nRight := n - nLeft
			if nLeft < b.minSamplesLeaf {
				continue
			}
			if nRight < b.minSamplesLeaf {
				break
			}

			v, next := b.X[idx[k]][f], b.X[idx[k+1]][f]
			if v == next {
				continue
			}

			meanLeft := sumLeft / float64(nLeft)
			meanRight := (total - sumLeft) / float64(nRight)
			diff := meanLeft - meanRight
			improvement := float64(nLeft) * float64(nRight) * diff * diff / float64(n)

			if improvement > best.improvement {
				threshold := v + (next-v)/2
				if threshold >= next {
					threshold = v
				}
				best = split{feature: f, threshold: threshold, improvement: improvement, nLeft: nLeft}
			}
		}
	}
	return best, best.feature >= 0
}
