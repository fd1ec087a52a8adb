// Package spatial indexes roster positions for radius queries.
//
// The index is rebuilt once per tick from a consistent snapshot; it is never
// mutated mid-tick. Query results are returned in insertion (roster) order so
// callers that accumulate floating-point sums stay deterministic.
package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"horde.ai/internal/sim/logic/vecmath"
)

const (
	treeMinChildren = 4
	treeMaxChildren = 16
	pointTolerance  = 1e-6
)

type item struct {
	id    string
	order int
	pos   vecmath.Vec3
}

func (it *item) Bounds() rtreego.Rect {
	return rtreego.Point{it.pos.X, it.pos.Y, it.pos.Z}.ToRect(pointTolerance)
}

// Entry is one query hit.
type Entry struct {
	ID    string
	Order int
	Pos   vecmath.Vec3
}

type Index struct {
	tree  *rtreego.Rtree
	items []*item
}

func New() *Index {
	return &Index{tree: rtreego.NewTree(3, treeMinChildren, treeMaxChildren)}
}

// Insert adds a point; order is the caller's stable ordering key (roster index).
func (x *Index) Insert(id string, order int, pos vecmath.Vec3) {
	it := &item{id: id, order: order, pos: pos}
	x.items = append(x.items, it)
	x.tree.Insert(it)
}

func (x *Index) Len() int { return len(x.items) }

// Within returns entries whose distance to center is strictly below radius,
// sorted by Order.
func (x *Index) Within(center vecmath.Vec3, radius float64) []Entry {
	if x == nil || len(x.items) == 0 || radius <= 0 {
		return nil
	}
	bb, err := rtreego.NewRect(
		rtreego.Point{center.X - radius, center.Y - radius, center.Z - radius},
		[]float64{2 * radius, 2 * radius, 2 * radius},
	)
	if err != nil {
		return nil
	}
	hits := x.tree.SearchIntersect(bb)
	out := make([]Entry, 0, len(hits))
	for _, h := range hits {
		it, ok := h.(*item)
		if !ok {
			continue
		}
		if vecmath.Dist(it.pos, center) >= radius {
			continue
		}
		out = append(out, Entry{ID: it.id, Order: it.order, Pos: it.pos})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
