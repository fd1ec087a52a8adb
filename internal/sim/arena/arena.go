// Package arena is the reference navigation and occlusion collaborator for
// the pursuit core: a flat square floor with axis-aligned box obstacles held
// in an r-tree, straight-line navigation agents and simulated prey.
package arena

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/tuning"
)

type Vec3 = vecmath.Vec3

const (
	// wallMargin keeps agents and sampled points off obstacle faces.
	wallMargin   = 0.35
	rayEpsilon   = 1e-6
	// columnHeight bounds the vertical extent of footprint queries.
	columnHeight = 1e4
)

type Box struct {
	ID  string
	Min Vec3
	Max Vec3
}

func (b *Box) Bounds() rtreego.Rect {
	r, err := rtreego.NewRect(
		rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z},
		[]float64{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z},
	)
	if err != nil {
		return rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z}.ToRect(rayEpsilon)
	}
	return r
}

// footprint reports whether p lies on the box's floor area grown by margin.
func (b *Box) footprint(p Vec3, margin float64) bool {
	return p.X > b.Min.X-margin && p.X < b.Max.X+margin &&
		p.Z > b.Min.Z-margin && p.Z < b.Max.Z+margin
}

// Arena is owned by the world loop goroutine.
type Arena struct {
	half  float64
	boxes []*Box
	tree  *rtreego.Rtree

	bodyRadius float64
	bodyHeight float64
	runners    []*Runner
}

func New(cfg tuning.Arena, preyCfg tuning.Prey) (*Arena, error) {
	if cfg.HalfExtent <= 0 {
		return nil, fmt.Errorf("arena: half extent must be > 0")
	}
	a := &Arena{
		half:       cfg.HalfExtent,
		tree:       rtreego.NewTree(3, 4, 16),
		bodyRadius: preyCfg.Radius,
		bodyHeight: preyCfg.Height,
	}
	for i, o := range cfg.Obstacles {
		b := &Box{
			ID:  fmt.Sprintf("obstacle:%d", i),
			Min: vecmath.FromArray(o.Min),
			Max: vecmath.FromArray(o.Max),
		}
		for k := 0; k < 3; k++ {
			if o.Max[k] <= o.Min[k] {
				return nil, fmt.Errorf("arena: %s has empty extent on axis %d", b.ID, k)
			}
		}
		a.boxes = append(a.boxes, b)
		a.tree.Insert(b)
	}
	return a, nil
}

func (a *Arena) HalfExtent() float64 { return a.half }

func (a *Arena) Obstacles() []Box {
	out := make([]Box, 0, len(a.boxes))
	for _, b := range a.boxes {
		out = append(out, *b)
	}
	return out
}

// SetRunners registers the prey bodies that rays may hit.
func (a *Arena) SetRunners(rs []*Runner) { a.runners = rs }

// Blocked reports whether p is off the floor or inside an obstacle footprint.
func (a *Arena) Blocked(p Vec3) bool {
	if math.Abs(p.X) > a.half || math.Abs(p.Z) > a.half {
		return true
	}
	return a.obstacleAt(p, 0) != nil
}

func (a *Arena) obstacleAt(p Vec3, margin float64) *Box {
	r := margin + rayEpsilon
	bb, err := rtreego.NewRect(rtreego.Point{p.X - r, -columnHeight, p.Z - r}, []float64{2 * r, 2 * columnHeight, 2 * r})
	if err != nil {
		return nil
	}
	for _, s := range a.tree.SearchIntersect(bb) {
		b, ok := s.(*Box)
		if ok && b.footprint(p, margin) {
			return b
		}
	}
	return nil
}

// SampleNavigable snaps p onto the floor: clamp to the arena, push out of
// obstacles and fail when the result is more than maxRadius away.
func (a *Arena) SampleNavigable(p Vec3, maxRadius float64) (Vec3, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Z) {
		return Vec3{}, false
	}
	lim := a.half - wallMargin
	q := Vec3{X: clamp(p.X, -lim, lim), Z: clamp(p.Z, -lim, lim)}
	for i := 0; i < 4; i++ {
		b := a.obstacleAt(q, wallMargin)
		if b == nil {
			break
		}
		q = pushOut(b, q)
		q.X = clamp(q.X, -lim, lim)
		q.Z = clamp(q.Z, -lim, lim)
	}
	if a.obstacleAt(q, wallMargin) != nil {
		return Vec3{}, false
	}
	if vecmath.Dist(q, p.Flat()) > maxRadius {
		return Vec3{}, false
	}
	return q, true
}

func pushOut(b *Box, q Vec3) Vec3 {
	left := q.X - (b.Min.X - wallMargin)
	right := (b.Max.X + wallMargin) - q.X
	back := q.Z - (b.Min.Z - wallMargin)
	front := (b.Max.Z + wallMargin) - q.Z
	m := math.Min(math.Min(left, right), math.Min(back, front))
	const nudge = 1e-3
	switch m {
	case left:
		q.X = b.Min.X - wallMargin - nudge
	case right:
		q.X = b.Max.X + wallMargin + nudge
	case back:
		q.Z = b.Min.Z - wallMargin - nudge
	default:
		q.Z = b.Max.Z + wallMargin + nudge
	}
	return q
}

// Raycast returns the nearest obstacle or prey body hit within maxDist.
func (a *Arena) Raycast(origin, dir Vec3, maxDist float64) (perception.Hit, bool) {
	dir = dir.Normalize()
	if dir.IsZero() || maxDist <= 0 {
		return perception.Hit{}, false
	}
	end := origin.Add(dir.Scale(maxDist))
	lo := Vec3{X: math.Min(origin.X, end.X), Y: math.Min(origin.Y, end.Y), Z: math.Min(origin.Z, end.Z)}
	hi := Vec3{X: math.Max(origin.X, end.X), Y: math.Max(origin.Y, end.Y), Z: math.Max(origin.Z, end.Z)}
	bb, err := rtreego.NewRect(
		rtreego.Point{lo.X - rayEpsilon, lo.Y - rayEpsilon, lo.Z - rayEpsilon},
		[]float64{hi.X - lo.X + 2*rayEpsilon, hi.Y - lo.Y + 2*rayEpsilon, hi.Z - lo.Z + 2*rayEpsilon},
	)
	if err != nil {
		return perception.Hit{}, false
	}

	var hits []perception.Hit
	for _, s := range a.tree.SearchIntersect(bb) {
		b, ok := s.(*Box)
		if !ok {
			continue
		}
		if t, ok := slab(origin, dir, b.Min, b.Max); ok && t <= maxDist {
			hits = append(hits, perception.Hit{ID: b.ID, Root: b.ID, Dist: t})
		}
	}
	for _, r := range a.runners {
		if r == nil {
			continue
		}
		p := r.Position()
		bmin := Vec3{X: p.X - a.bodyRadius, Y: p.Y, Z: p.Z - a.bodyRadius}
		bmax := Vec3{X: p.X + a.bodyRadius, Y: p.Y + a.bodyHeight, Z: p.Z + a.bodyRadius}
		if t, ok := slab(origin, dir, bmin, bmax); ok && t <= maxDist {
			hits = append(hits, perception.Hit{ID: r.ID() + "/body", Root: r.ID(), Dist: t})
		}
	}
	if len(hits) == 0 {
		return perception.Hit{}, false
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })
	return hits[0], true
}

// slab intersects a ray with an axis-aligned box and returns the entry
// distance (0 when the origin is inside).
func slab(origin, dir, bmin, bmax Vec3) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	o := origin.Array()
	d := dir.Array()
	lo := bmin.Array()
	hi := bmax.Array()
	for k := 0; k < 3; k++ {
		if math.Abs(d[k]) < 1e-12 {
			if o[k] < lo[k] || o[k] > hi[k] {
				return 0, false
			}
			continue
		}
		t1 := (lo[k] - o[k]) / d[k]
		t2 := (hi[k] - o[k]) / d[k]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
