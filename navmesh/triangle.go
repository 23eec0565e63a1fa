package navmesh

import (
	"fmt"
	"math"
)

// TriangleID addresses a triangle inside its Mesh.
type TriangleID int

// NoTriangle is the zero handle for "no triangle".
const NoTriangle TriangleID = -1

// Neighbor is an adjacent triangle and the edge shared with it.
type Neighbor struct {
	ID   TriangleID
	Edge Edge
}

// Triangle is one walkable cell of a Mesh.
type Triangle struct {
	ID        TriangleID
	Vertices  [3]Vector
	neighbors []Neighbor
}

func newTriangle(id TriangleID, a, b, c Vector) (Triangle, error) {
	if a == b || b == c || a == c {
		return Triangle{}, fmt.Errorf("%w: %v %v %v", ErrDegenerateTriangle, a, b, c)
	}
	if b.Sub(a).Cross(c.Sub(a)) == 0 {
		return Triangle{}, fmt.Errorf("%w: %v %v %v are collinear", ErrDegenerateTriangle, a, b, c)
	}
	return Triangle{ID: id, Vertices: [3]Vector{a, b, c}}, nil
}

// Neighbors returns the adjacent triangles and their common edges.
func (t *Triangle) Neighbors() []Neighbor {
	out := make([]Neighbor, len(t.neighbors))
	copy(out, t.neighbors)
	return out
}

// HasVertex reports whether v is one of the corners.
func (t *Triangle) HasVertex(v Vector) bool {
	return t.Vertices[0] == v || t.Vertices[1] == v || t.Vertices[2] == v
}

// SharedVertices returns the corners t has in common with o.
func (t *Triangle) SharedVertices(o *Triangle) []Vector {
	var shared []Vector
	for _, v := range t.Vertices {
		if o.HasVertex(v) {
			shared = append(shared, v)
		}
	}
	return shared
}

// Edges returns the three sides.
func (t *Triangle) Edges() [3]Edge {
	v := t.Vertices
	return [3]Edge{{A: v[0], B: v[1]}, {A: v[1], B: v[2]}, {A: v[2], B: v[0]}}
}

// Centroid returns the mean of the corners.
func (t *Triangle) Centroid() Vector {
	v := t.Vertices
	return V((v[0].X+v[1].X+v[2].X)/3, (v[0].Y+v[1].Y+v[2].Y)/3)
}

// ContainsPoint reports whether p lies inside t. Points on or within Epsilon
// of a side count as inside, so a point on a shared edge belongs to both
// triangles of that edge.
func (t *Triangle) ContainsPoint(p Vector) bool {
	a, b, c := t.Vertices[0], t.Vertices[1], t.Vertices[2]
	v0, v1, v2 := c.Sub(a), b.Sub(a), p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	u := (dot11*dot02 - dot01*dot12) / denom
	w := (dot00*dot12 - dot01*dot02) / denom

	return u >= -Epsilon && w >= -Epsilon && u+w <= 1+Epsilon
}

// ClosestPoint returns p when it lies inside t, otherwise the nearest point
// on t's boundary.
func (t *Triangle) ClosestPoint(p Vector) Vector {
	if t.ContainsPoint(p) {
		return p
	}
	best, bestDist := p, math.Inf(1)
	for _, e := range t.Edges() {
		c := e.ClosestPointOnEdgeFrom(p)
		if d := c.Distance(p); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Equal reports whether both triangles have the same corners in any order.
func (t *Triangle) Equal(o *Triangle) bool {
	return len(t.SharedVertices(o)) == 3
}

func (t *Triangle) String() string {
	return fmt.Sprintf("#%d%v", t.ID, t.Vertices)
}
