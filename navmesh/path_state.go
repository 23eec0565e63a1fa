package navmesh

import (
	"fmt"
	"math"
)

// PathState is one partial path through a sequence of triangles. Besides the
// funnel it keeps, for the edge crossed last, a lower bound (dgMin) and an
// upper bound (dgMax) on the distance from the committed apex to that edge
// and a heuristic h: the straight-line distance from that edge to the
// nearest goal.
type PathState struct {
	funnel      *Funnel
	current     TriangleID
	previous    TriangleID
	currentEdge *Edge

	h           float64
	dgMin       float64
	dgMax       float64
	goalReached bool

	crossed *crossing // edges crossed so far, most recent first
	looped  bool      // last step re-crossed an edge without the apex moving
}

// crossing records an edge crossed by the corridor and how many path points
// were committed at that moment. The list is shared between clones and never
// modified.
type crossing struct {
	edge      Edge
	committed int
	prev      *crossing
}

// NewPathState returns the state of a search that has not left the start
// triangle yet. All bounds are zero.
func NewPathState(start Vector, triangle TriangleID) *PathState {
	return &PathState{
		funnel:   NewFunnel(start),
		current:  triangle,
		previous: NoTriangle,
	}
}

// Clone returns a copy that can be stepped without affecting s.
func (s *PathState) Clone() *PathState {
	c := *s
	c.funnel = s.funnel.Clone()
	if s.currentEdge != nil {
		e := *s.currentEdge
		c.currentEdge = &e
	}
	return &c
}

// Current returns the triangle the path has reached.
func (s *PathState) Current() TriangleID { return s.current }

// Previous returns the triangle the path arrived from, or NoTriangle.
func (s *PathState) Previous() TriangleID { return s.previous }

// CurrentEdge returns the edge crossed last; ok is false before the first step.
func (s *PathState) CurrentEdge() (e Edge, ok bool) {
	if s.currentEdge == nil {
		return Edge{}, false
	}
	return *s.currentEdge, true
}

// Funnel exposes the underlying funnel for inspection.
func (s *PathState) Funnel() *Funnel { return s.funnel }

// GoalReached reports whether the path was finalized at a goal.
func (s *PathState) GoalReached() bool { return s.goalReached }

// Heuristic returns h.
func (s *PathState) Heuristic() float64 { return s.h }

// Path returns the committed path.
func (s *PathState) Path() []Vector { return s.funnel.Path() }

// ShortestPossiblePathLength is the committed length plus the lower bound to the current edge.
func (s *PathState) ShortestPossiblePathLength() float64 {
	return s.funnel.PathLength() + s.dgMin
}

// LongestPossiblePathLength is the committed length plus the upper bound to the current edge.
func (s *PathState) LongestPossiblePathLength() float64 {
	return s.funnel.PathLength() + s.dgMax
}

// EstimatedMinimalOverallCost never exceeds the length of the best complete
// path extending s.
func (s *PathState) EstimatedMinimalOverallCost() float64 {
	return s.ShortestPossiblePathLength() + s.h
}

// StepTo moves the state into next, which must be adjacent to the current
// triangle, and recomputes the bounds for the crossed edge.
func (s *PathState) StepTo(mesh *Mesh, next TriangleID, goals []Vector) error {
	if s.goalReached {
		return ErrFinalized
	}
	edge, err := mesh.CommonEdge(s.current, next)
	if err != nil {
		return err
	}
	if err := s.funnel.StepTo(edge); err != nil {
		return fmt.Errorf("step #%d -> #%d: %w", s.current, next, err)
	}

	s.previous, s.current = s.current, next
	s.currentEdge = &edge
	s.markCrossing(edge)
	s.evaluate(edge, goals)
	return nil
}

// markCrossing records edge. The apex only moves by committing a path point,
// so crossings with the same committed count share the current apex.
func (s *PathState) markCrossing(edge Edge) {
	k := edge.Key()
	committed := len(s.funnel.Path())

	s.looped = false
	for c := s.crossed; c != nil && c.committed == committed; c = c.prev {
		if c.edge == k {
			s.looped = true
			break
		}
	}
	s.crossed = &crossing{edge: k, committed: committed, prev: s.crossed}
}

// Looped reports whether the last step crossed an edge this path had already
// crossed with the same apex. Such a path can never beat its earlier visit.
func (s *PathState) Looped() bool { return s.looped }

func (s *PathState) evaluate(edge Edge, goals []Vector) {
	s.dgMin = s.funnel.distanceTo(edge)

	left, right := s.funnel.chainLengths()
	s.dgMax = math.Max(math.Max(left, right), s.dgMin)

	s.h = math.Inf(1)
	for _, g := range goals {
		s.h = math.Min(s.h, edge.DistanceFrom(g))
	}
	if len(goals) == 0 {
		s.h = 0
	}
}

// FinalizePath ends the path at goal, which must lie in the current triangle.
func (s *PathState) FinalizePath(goal Vector) error {
	if err := s.funnel.FinalizePath(goal); err != nil {
		return err
	}
	s.dgMin, s.dgMax, s.h = 0, 0, 0
	s.goalReached = true
	return nil
}

// ExplorableTriangles returns the neighbours of the current triangle except
// the one the path just came from.
func (s *PathState) ExplorableTriangles(mesh *Mesh) ([]TriangleID, error) {
	ids, err := mesh.Neighbors(s.current)
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != s.previous {
			out = append(out, id)
		}
	}
	return out, nil
}

// ReachedGoals returns the goals that lie in the current triangle.
func (s *PathState) ReachedGoals(mesh *Mesh, goals []Vector) ([]Vector, error) {
	t, err := mesh.Triangle(s.current)
	if err != nil {
		return nil, err
	}
	var reached []Vector
	for _, g := range goals {
		if t.ContainsPoint(g) {
			reached = append(reached, g)
		}
	}
	return reached, nil
}
