package navmesh

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for approximate point equality and for
// barycentric point-in-triangle tests. Node identity inside the funnel and
// adjacency checks use exact equality, since those points are always copied
// from the same mesh vertices.
const Epsilon = 1e-9

// Vector is a 2-D point or displacement.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vector{X: x, Y: y}.
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the cross product v × o. It is positive
// when o points counter-clockwise of v.
func (v Vector) Cross(o Vector) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Length returns the Euclidean norm of v.
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance calculates Euclidean distance between two points
func (v Vector) Distance(o Vector) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// IsCounterClockwiseFrom reports whether v is reached from o by a
// counter-clockwise turn of less than half a revolution. Both vectors are
// displacements from a common origin. Parallel vectors are neither clockwise
// nor counter-clockwise from each other.
func (v Vector) IsCounterClockwiseFrom(o Vector) bool {
	return o.Cross(v) > 0
}

// IsClockwiseFrom is the mirror of IsCounterClockwiseFrom.
func (v Vector) IsClockwiseFrom(o Vector) bool {
	return o.Cross(v) < 0
}

// ApproxEqual reports whether v and o are within Epsilon on both axes.
func (v Vector) ApproxEqual(o Vector) bool {
	return math.Abs(v.X-o.X) <= Epsilon && math.Abs(v.Y-o.Y) <= Epsilon
}

// Less orders vectors by X, then by Y.
func (v Vector) Less(o Vector) bool {
	if v.X != o.X {
		return v.X < o.X
	}
	return v.Y < o.Y
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// PathLength returns the total length of the polyline through pts.
func PathLength(pts []Vector) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Distance(pts[i])
	}
	return total
}
