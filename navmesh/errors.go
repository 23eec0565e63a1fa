package navmesh

import "errors"

// Sentinel errors. Construction and adjacency errors mean the caller handed in
// a malformed mesh; they are returned wrapped with the offending coordinates.
var (
	// ErrDegenerateEdge indicates an edge whose endpoints are equal.
	ErrDegenerateEdge = errors.New("navmesh: edge endpoints are equal")

	// ErrDegenerateTriangle indicates a triangle with repeated or collinear vertices.
	ErrDegenerateTriangle = errors.New("navmesh: triangle needs 3 distinct, non-collinear vertices")

	// ErrNotAdjacent indicates two triangles that do not share exactly 2 vertices.
	ErrNotAdjacent = errors.New("navmesh: triangles are not adjacent")

	// ErrTooManyNeighbors indicates a triangle that would get a 4th neighbour.
	ErrTooManyNeighbors = errors.New("navmesh: triangle already has 3 neighbors")

	// ErrNonManifoldEdge indicates an edge shared by more than two triangles.
	ErrNonManifoldEdge = errors.New("navmesh: edge shared by more than two triangles")

	// ErrUnknownTriangle indicates a TriangleID that is not part of the mesh.
	ErrUnknownTriangle = errors.New("navmesh: unknown triangle")

	// ErrBacktrackingEdge indicates a funnel step across the funnel's own portal.
	ErrBacktrackingEdge = errors.New("navmesh: edge equals the current portal")

	// ErrDisconnectedEdge indicates a funnel step across an edge that touches
	// neither end of the current portal.
	ErrDisconnectedEdge = errors.New("navmesh: edge is not connected to the funnel")

	// ErrFinalized indicates a step on a funnel whose path was already finalized.
	ErrFinalized = errors.New("navmesh: path already finalized")

	// ErrNoGoals indicates a search started without goal points.
	ErrNoGoals = errors.New("navmesh: no goal points")

	// ErrExpansionLimit indicates a search that hit its configured expansion limit.
	ErrExpansionLimit = errors.New("navmesh: expansion limit reached")
)
