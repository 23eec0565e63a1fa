package navmesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Exploration describes one path state created while expanding the search.
// It is a copy; nothing in it can influence the search.
type Exploration struct {
	Triangle         TriangleID `json:"triangle"`
	Heuristic        float64    `json:"heuristic"`
	ShortestPossible float64    `json:"shortestPossible"`
	LongestPossible  float64    `json:"longestPossible"`
	EstimatedCost    float64    `json:"estimatedCost"`
	Accepted         bool       `json:"accepted"`
}

// ExploreFunc observes explored triangles, e.g. for visualisation.
type ExploreFunc func(Exploration)

// Result is the outcome of FindPath. Found is false when no goal is reachable.
type Result struct {
	Path     []Vector
	Length   float64
	Goal     Vector
	Found    bool
	Expanded int // path states popped from the open set
	Pruned   int // path states rejected by the edge bound table
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithExploreFunc registers fn to be called for every explored triangle.
func WithExploreFunc(fn ExploreFunc) Option {
	return func(s *Searcher) { s.explore = fn }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxExpansions caps the number of popped path states; 0 means no cap.
func WithMaxExpansions(n int) Option {
	return func(s *Searcher) { s.maxExpansions = n }
}

// Searcher finds shortest paths on a mesh. Every FindPath call uses its own
// open set and edge bound table, so one Searcher may serve concurrent calls.
type Searcher struct {
	mesh          *Mesh
	explore       ExploreFunc
	logger        *log.Logger
	maxExpansions int
}

// NewSearcher returns a Searcher for mesh.
func NewSearcher(mesh *Mesh, opts ...Option) *Searcher {
	s := &Searcher{
		mesh:   mesh,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// search holds the state of one FindPath call.
type search struct {
	*Searcher
	goals  []Vector
	open   openSet
	bounds map[Edge]float64 // smallest known upper bound per crossed edge
	res    Result
}

// FindPath returns the shortest path from start, which lies in startTriangle,
// to the nearest of goals. A result with Found == false means no goal is
// reachable. Errors indicate a malformed mesh or invalid arguments.
func (s *Searcher) FindPath(ctx context.Context, start Vector, startTriangle TriangleID, goals []Vector) (Result, error) {
	if len(goals) == 0 {
		return Result{}, ErrNoGoals
	}
	if _, err := s.mesh.Triangle(startTriangle); err != nil {
		return Result{}, err
	}

	began := time.Now()
	run := &search{
		Searcher: s,
		goals:    goals,
		bounds:   make(map[Edge]float64),
	}
	run.open.push(NewPathState(start, startTriangle))

	err := run.loop(ctx)
	s.logger.Debug("search finished",
		"start", start,
		"goals", len(goals),
		"found", run.res.Found,
		"length", run.res.Length,
		"expanded", run.res.Expanded,
		"pruned", run.res.Pruned,
		"elapsed", time.Since(began))
	return run.res, err
}

func (r *search) loop(ctx context.Context) error {
	for r.open.len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.maxExpansions > 0 && r.res.Expanded >= r.maxExpansions {
			return fmt.Errorf("%w (%d)", ErrExpansionLimit, r.maxExpansions)
		}

		state := r.open.pop()
		r.res.Expanded++

		if state.GoalReached() {
			path := state.Path()
			r.res.Path = path
			r.res.Length = state.funnel.PathLength()
			r.res.Goal = path[len(path)-1]
			r.res.Found = true
			return nil
		}

		if err := r.expand(state); err != nil {
			return err
		}
	}
	return nil
}

func (r *search) expand(state *PathState) error {
	reached, err := state.ReachedGoals(r.mesh, r.goals)
	if err != nil {
		return err
	}
	for _, g := range reached {
		done := state.Clone()
		if err := done.FinalizePath(g); err != nil {
			return err
		}
		r.open.push(done)
	}

	next, err := state.ExplorableTriangles(r.mesh)
	if err != nil {
		return err
	}
	for _, id := range next {
		child := state.Clone()
		if err := child.StepTo(r.mesh, id, r.goals); err != nil {
			return err
		}

		accepted := r.isGoodCandidate(child)
		if accepted {
			r.open.push(child)
			r.recordBound(child)
		} else {
			r.res.Pruned++
		}

		if r.explore != nil {
			r.explore(Exploration{
				Triangle:         id,
				Heuristic:        child.Heuristic(),
				ShortestPossible: child.ShortestPossiblePathLength(),
				LongestPossible:  child.LongestPossiblePathLength(),
				EstimatedCost:    child.EstimatedMinimalOverallCost(),
				Accepted:         accepted,
			})
		}
	}
	return nil
}

// isGoodCandidate rejects a state that circled back onto an edge without
// moving its apex, or one for which another explored path is already
// guaranteed to reach the same edge for less than this state's best case.
func (r *search) isGoodCandidate(s *PathState) bool {
	if s.Looped() {
		return false
	}
	e, ok := s.CurrentEdge()
	if !ok {
		return true
	}
	bound, known := r.bounds[e.Key()]
	return !known || bound >= s.ShortestPossiblePathLength()
}

func (r *search) recordBound(s *PathState) {
	e, ok := s.CurrentEdge()
	if !ok {
		return
	}
	k := e.Key()
	longest := s.LongestPossiblePathLength()
	if bound, known := r.bounds[k]; !known || longest < bound {
		r.bounds[k] = longest
	}
}

// IsContractViolation reports whether err means the mesh handed to the
// search was malformed.
func IsContractViolation(err error) bool {
	for _, target := range []error{
		ErrNotAdjacent, ErrBacktrackingEdge, ErrDisconnectedEdge, ErrUnknownTriangle,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
