package navmesh

import "fmt"

// Edge is an unordered pair of distinct points. Use NewEdge for points that
// did not come from a Mesh; a literal skips the distinctness check.
type Edge struct {
	A, B Vector
}

// NewEdge returns the edge between a and b. It fails when the points are equal.
func NewEdge(a, b Vector) (Edge, error) {
	if a == b {
		return Edge{}, fmt.Errorf("%w: %v and %v", ErrDegenerateEdge, a, b)
	}
	return Edge{A: a, B: b}, nil
}

// Equal compares edges regardless of endpoint order.
func (e Edge) Equal(o Edge) bool {
	return (e.A == o.A && e.B == o.B) || (e.A == o.B && e.B == o.A)
}

// Key returns the edge with its endpoints in canonical order, so that both
// orientations of an edge map to the same key.
func (e Edge) Key() Edge {
	if e.B.Less(e.A) {
		return Edge{A: e.B, B: e.A}
	}
	return e
}

// Has reports whether v is one of the endpoints.
func (e Edge) Has(v Vector) bool {
	return e.A == v || e.B == v
}

// Other returns the endpoint that is not v. v must be an endpoint.
func (e Edge) Other(v Vector) Vector {
	if e.A == v {
		return e.B
	}
	return e.A
}

func (e Edge) Length() float64 {
	return e.A.Distance(e.B)
}

// projection returns the clamped segment parameter of p's projection onto e.
func (e Edge) projection(p Vector) float64 {
	d := e.B.Sub(e.A)
	t := p.Sub(e.A).Dot(d) / d.Dot(d)
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// ClosestPointOnEdgeFrom projects p onto the segment, clamped to its endpoints.
func (e Edge) ClosestPointOnEdgeFrom(p Vector) Vector {
	t := e.projection(p)
	switch t {
	case 0:
		return e.A
	case 1:
		return e.B
	}
	return e.A.Add(e.B.Sub(e.A).Scale(t))
}

// DistanceFrom returns the distance from p to the closest point of the segment.
func (e Edge) DistanceFrom(p Vector) float64 {
	switch t := e.projection(p); t {
	case 0:
		return p.Distance(e.A)
	case 1:
		return p.Distance(e.B)
	default:
		return p.Distance(e.A.Add(e.B.Sub(e.A).Scale(t)))
	}
}

func (e Edge) String() string {
	return fmt.Sprintf("[%v %v]", e.A, e.B)
}
