// Package kdtree organizes the primitives of a sector for box queries and
// shadow ray tests.
package kdtree

import (
	"sort"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
)

// Item is anything the tree can hold
type Item interface {
	comparable
	Bounds() geom.Box
	// IntersectSegment reports the first hit of from + t*dir with t in [tMin, tMax]
	IntersectSegment(from, dir mgl32.Vec3, tMin, tMax float32) (float32, bool)
}

// Options controls tree construction
type Options struct {
	LeafSize int // stop splitting at this many items
	MaxDepth int
}

// DefaultOptions are used when Build gets a zero Options
var DefaultOptions = Options{LeafSize: 4, MaxDepth: 24}

type node struct {
	axis  int
	split float32
	left  *node
	right *node
	items []int32 // nil for internal nodes
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// Tree is a k-d tree over a fixed set of items. Items straddling a split
// plane are referenced from both sides.
type Tree[T Item] struct {
	root   *node
	items  []T
	boxes  []geom.Box
	bounds geom.Box
	stats  Stats

	raysCast     atomic.Int64
	raysOccluded atomic.Int64
}

// Stats describes the shape of a built tree and the rays traced through it
type Stats struct {
	Items        int
	Nodes        int
	Leaves       int
	MaxDepth     int
	ItemRefs     int // item references over all leaves
	RaysCast     int64
	RaysOccluded int64
}

// Build constructs the tree. The items slice is copied.
func Build[T Item](items []T, opts Options) *Tree[T] {
	if opts.LeafSize <= 0 {
		opts.LeafSize = DefaultOptions.LeafSize
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions.MaxDepth
	}

	t := &Tree[T]{
		items:  append([]T(nil), items...),
		boxes:  make([]geom.Box, len(items)),
		bounds: geom.EmptyBox(),
	}
	if len(items) == 0 {
		return t
	}

	indices := make([]int32, len(items))
	for i, item := range t.items {
		t.boxes[i] = item.Bounds()
		t.bounds = t.bounds.Union(t.boxes[i])
		indices[i] = int32(i)
	}
	t.stats.Items = len(items)
	t.root = t.build(indices, t.bounds, 0, opts)
	return t
}

func (t *Tree[T]) build(indices []int32, box geom.Box, depth int, opts Options) *node {
	t.stats.Nodes++
	if depth > t.stats.MaxDepth {
		t.stats.MaxDepth = depth
	}

	if len(indices) <= opts.LeafSize || depth >= opts.MaxDepth {
		return t.leaf(indices)
	}

	// Median of item centers along the longest axis
	axis := box.LongestAxis()
	centers := make([]float32, len(indices))
	for i, idx := range indices {
		centers[i] = t.boxes[idx].Center()[axis]
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i] < centers[j] })
	split := centers[len(centers)/2]

	var left, right []int32
	for _, idx := range indices {
		b := t.boxes[idx]
		if b.Min[axis] <= split {
			left = append(left, idx)
		}
		if b.Max[axis] >= split {
			right = append(right, idx)
		}
	}

	// Splitting did not separate anything
	if len(left) == len(indices) && len(right) == len(indices) {
		return t.leaf(indices)
	}

	leftBox, rightBox := box, box
	leftBox.Max[axis] = split
	rightBox.Min[axis] = split

	return &node{
		axis:  axis,
		split: split,
		left:  t.build(left, leftBox, depth+1, opts),
		right: t.build(right, rightBox, depth+1, opts),
	}
}

func (t *Tree[T]) leaf(indices []int32) *node {
	t.stats.Leaves++
	t.stats.ItemRefs += len(indices)
	if indices == nil {
		indices = []int32{}
	}
	return &node{items: indices}
}

// Bounds of all items in the tree
func (t *Tree[T]) Bounds() geom.Box {
	return t.bounds
}

// Len returns the number of items
func (t *Tree[T]) Len() int {
	return len(t.items)
}

// Items returns the items in build order
func (t *Tree[T]) Items() []T {
	return t.items
}

// Stats returns construction statistics and ray counters
func (t *Tree[T]) Stats() Stats {
	s := t.stats
	s.RaysCast = t.raysCast.Load()
	s.RaysOccluded = t.raysOccluded.Load()
	return s
}

// CollectPrimitives appends to out every item whose bounds overlap box, in
// build order and without duplicates. Reports whether anything was found.
func (t *Tree[T]) CollectPrimitives(box geom.Box, out []T) ([]T, bool) {
	if t.root == nil || !t.bounds.Overlaps(box) {
		return out, false
	}

	found := bitset.New(uint(len(t.items)))
	t.collect(t.root, box, found)

	foundAny := false
	for i, ok := found.NextSet(0); ok; i, ok = found.NextSet(i + 1) {
		out = append(out, t.items[i])
		foundAny = true
	}
	return out, foundAny
}

func (t *Tree[T]) collect(n *node, box geom.Box, found *bitset.BitSet) {
	if n.isLeaf() {
		for _, idx := range n.items {
			if !found.Test(uint(idx)) && t.boxes[idx].Overlaps(box) {
				found.Set(uint(idx))
			}
		}
		return
	}
	if box.Min[n.axis] <= n.split {
		t.collect(n.left, box, found)
	}
	if box.Max[n.axis] >= n.split {
		t.collect(n.right, box, found)
	}
}

// AnyHit reports whether the segment from + t*dir, t in [tMin, tMax], hits
// any item other than exclude
func (t *Tree[T]) AnyHit(from, dir mgl32.Vec3, tMin, tMax float32, exclude T) bool {
	t.raysCast.Add(1)
	if t.root == nil {
		return false
	}
	n0, n1, ok := t.bounds.ClipSegment(from, dir, tMin, tMax)
	if !ok {
		return false
	}
	hit := t.anyHit(t.root, from, dir, n0, n1, tMin, tMax, exclude)
	if hit {
		t.raysOccluded.Add(1)
	}
	return hit
}

// anyHit walks the nodes overlapping [nMin, nMax] of the segment; items
// are tested against the full segment range since they may straddle
// node bounds
func (t *Tree[T]) anyHit(n *node, from, dir mgl32.Vec3, nMin, nMax, tMin, tMax float32, exclude T) bool {
	if n.isLeaf() {
		for _, idx := range n.items {
			item := t.items[idx]
			if item == exclude {
				continue
			}
			if _, ok := item.IntersectSegment(from, dir, tMin, tMax); ok {
				return true
			}
		}
		return false
	}

	o := from[n.axis]
	d := dir[n.axis]
	near, far := n.left, n.right
	if o > n.split || (o == n.split && d > 0) {
		near, far = n.right, n.left
	}

	if d == 0 {
		return t.anyHit(near, from, dir, nMin, nMax, tMin, tMax, exclude)
	}

	tSplit := (n.split - o) / d
	switch {
	case tSplit > nMax || tSplit <= 0:
		return t.anyHit(near, from, dir, nMin, nMax, tMin, tMax, exclude)
	case tSplit < nMin:
		return t.anyHit(far, from, dir, nMin, nMax, tMin, tMax, exclude)
	}
	return t.anyHit(near, from, dir, nMin, tSplit, tMin, tMax, exclude) ||
		t.anyHit(far, from, dir, tSplit, nMax, tMin, tMax, exclude)
}
