package navmesh

import "fmt"

// side is the part of the funnel a portal edge extends.
type side int

const (
	sideNone  side = iota // edge touches neither end
	sideLeft              // edge keeps the right end, the left end moves
	sideRight             // edge keeps the left end, the right end moves
	sideBoth              // edge is the current portal
)

// Funnel keeps the taut boundary of every shortest path from the apex through
// the portals stepped over so far.
//
// nodes holds the boundary read from the left end (index 0) to the right end
// (last index). The node at apex splits it into the left chain
// nodes[apex], nodes[apex-1], ..., nodes[0] and the right chain
// nodes[apex], ..., nodes[len-1]. Seen from the apex, the left chain bends
// counter-clockwise and the right chain clockwise.
//
// path is the committed polyline from the start point up to and including
// the current apex. It only ever grows.
type Funnel struct {
	nodes     []Vector
	apex      int
	path      []Vector
	length    float64
	finalized bool
}

// NewFunnel returns a funnel holding only start.
func NewFunnel(start Vector) *Funnel {
	return &Funnel{
		nodes: []Vector{start},
		path:  []Vector{start},
	}
}

// Clone returns a deep copy that shares no state with f.
func (f *Funnel) Clone() *Funnel {
	c := *f
	c.nodes = append(make([]Vector, 0, len(f.nodes)+2), f.nodes...)
	c.path = append(make([]Vector, 0, len(f.path)+2), f.path...)
	return &c
}

// Apex returns the current apex.
func (f *Funnel) Apex() Vector {
	return f.nodes[f.apex]
}

// Left returns the left end of the current portal.
func (f *Funnel) Left() Vector {
	return f.nodes[0]
}

// Right returns the right end of the current portal.
func (f *Funnel) Right() Vector {
	return f.nodes[len(f.nodes)-1]
}

// Nodes returns a copy of the boundary, left end first.
func (f *Funnel) Nodes() []Vector {
	return append([]Vector(nil), f.nodes...)
}

// Path returns a copy of the committed path.
func (f *Funnel) Path() []Vector {
	return append([]Vector(nil), f.path...)
}

// PathLength returns the length of the committed path.
func (f *Funnel) PathLength() float64 {
	return f.length
}

// Finalized reports whether FinalizePath has run.
func (f *Funnel) Finalized() bool {
	return f.finalized
}

func (f *Funnel) classify(e Edge) side {
	hasLeft, hasRight := e.Has(f.Left()), e.Has(f.Right())
	switch {
	case hasLeft && hasRight:
		return sideBoth
	case hasRight:
		return sideLeft
	case hasLeft:
		return sideRight
	}
	return sideNone
}

// StepTo extends the funnel across the portal e. Apart from the first portal,
// e must share exactly one endpoint with the current portal.
func (f *Funnel) StepTo(e Edge) error {
	if f.finalized {
		return ErrFinalized
	}
	if len(f.nodes) == 1 {
		f.init(e)
		return nil
	}

	switch f.classify(e) {
	case sideLeft:
		f.pushLeft(e.Other(f.Right()))
	case sideRight:
		f.pushRight(e.Other(f.Left()))
	case sideBoth:
		return fmt.Errorf("%w: %v", ErrBacktrackingEdge, e)
	default:
		return fmt.Errorf("%w: %v, portal is [%v %v]", ErrDisconnectedEdge, e, f.Left(), f.Right())
	}
	return nil
}

// init opens the funnel on the first portal. When the start point lies on the
// portal's line the funnel stays a single point and the portal is ignored.
func (f *Funnel) init(e Edge) {
	start := f.nodes[0]
	a, b := e.A.Sub(start), e.B.Sub(start)
	switch {
	case a.IsCounterClockwiseFrom(b):
		f.nodes = []Vector{e.A, start, e.B}
	case b.IsCounterClockwiseFrom(a):
		f.nodes = []Vector{e.B, start, e.A}
	default:
		return
	}
	f.apex = 1
}

// commit appends the new apex position to the path.
func (f *Funnel) commit(p Vector) {
	last := f.path[len(f.path)-1]
	if last == p {
		return
	}
	f.length += last.Distance(p)
	f.path = append(f.path, p)
}

func (f *Funnel) pushLeft(p Vector) {
	f.nodes = append(f.nodes, Vector{})
	copy(f.nodes[1:], f.nodes)
	f.nodes[0] = p
	f.apex++
	f.refreshLeft()
}

func (f *Funnel) pushRight(p Vector) {
	f.nodes = append(f.nodes, p)
	f.refreshRight()
}

// refreshRight restores tautness after a node was added at the right end.
// Right chain nodes that no longer bend clockwise are dropped; once the new
// node sees past the left chain, the apex walks along the left chain.
func (f *Funnel) refreshRight() {
	for len(f.nodes) >= 3 {
		n := len(f.nodes)
		last, mid, prev := f.nodes[n-1], f.nodes[n-2], f.nodes[n-3]

		if n-2 != f.apex {
			if mid.Sub(prev).Cross(last.Sub(mid)) < 0 {
				return
			}
			f.nodes = append(f.nodes[:n-2], last)
			continue
		}

		// mid is the apex and prev the first node of the left chain.
		if !last.Sub(mid).IsCounterClockwiseFrom(prev.Sub(mid)) {
			return
		}
		f.nodes = append(f.nodes[:n-2], last)
		f.apex--
		f.commit(f.nodes[f.apex])
	}
}

// refreshLeft mirrors refreshRight for a node added at the left end.
func (f *Funnel) refreshLeft() {
	for len(f.nodes) >= 3 {
		first, mid, next := f.nodes[0], f.nodes[1], f.nodes[2]

		if f.apex != 1 {
			if mid.Sub(next).Cross(first.Sub(mid)) > 0 {
				return
			}
			f.nodes = append(f.nodes[:1], f.nodes[2:]...)
			f.apex--
			continue
		}

		// mid is the apex and next the first node of the right chain.
		if !first.Sub(mid).IsClockwiseFrom(next.Sub(mid)) {
			return
		}
		f.nodes = append(f.nodes[:1], f.nodes[2:]...)
		f.commit(f.nodes[f.apex])
	}
}

// FinalizePath folds goal in as the last right-hand node and commits the
// remaining right chain, so the path ends exactly at goal.
func (f *Funnel) FinalizePath(goal Vector) error {
	if f.finalized {
		return ErrFinalized
	}
	f.pushRight(goal)
	for _, p := range f.nodes[f.apex+1:] {
		f.commit(p)
	}
	f.nodes = []Vector{goal}
	f.apex = 0
	f.finalized = true
	return nil
}

// chainLengths returns the lengths of the left and right chains measured
// from the apex.
func (f *Funnel) chainLengths() (left, right float64) {
	for i := f.apex; i > 0; i-- {
		left += f.nodes[i].Distance(f.nodes[i-1])
	}
	for i := f.apex; i < len(f.nodes)-1; i++ {
		right += f.nodes[i].Distance(f.nodes[i+1])
	}
	return left, right
}

// distanceTo returns a lower bound on the distance from the apex to the
// closest point of e. Starting at the apex it walks along whichever chain
// hides the closest point, then finishes with a straight segment.
func (f *Funnel) distanceTo(e Edge) float64 {
	cur, step := f.apex, 0
	var dist float64
	for {
		node := f.nodes[cur]
		toward := e.ClosestPointOnEdgeFrom(node).Sub(node)

		if step <= 0 && cur > 0 {
			if left := f.nodes[cur-1]; toward.IsCounterClockwiseFrom(left.Sub(node)) {
				dist += node.Distance(left)
				cur, step = cur-1, -1
				continue
			}
		}
		if step >= 0 && cur < len(f.nodes)-1 {
			if right := f.nodes[cur+1]; toward.IsClockwiseFrom(right.Sub(node)) {
				dist += node.Distance(right)
				cur, step = cur+1, 1
				continue
			}
		}
		return dist + toward.Length()
	}
}
