package navmesh

import "fmt"

// Mesh is an arena of triangles. Adjacency is stored as TriangleIDs, so the
// graph carries no pointer cycles. A mesh must not be modified while searches
// run on it; once built it is safe for concurrent readers.
type Mesh struct {
	triangles []Triangle
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// Len returns the number of triangles.
func (m *Mesh) Len() int {
	return len(m.triangles)
}

// AddTriangle appends the triangle a, b, c and returns its handle.
func (m *Mesh) AddTriangle(a, b, c Vector) (TriangleID, error) {
	id := TriangleID(len(m.triangles))
	t, err := newTriangle(id, a, b, c)
	if err != nil {
		return NoTriangle, err
	}
	m.triangles = append(m.triangles, t)
	return id, nil
}

// Triangle returns the triangle with the given handle.
func (m *Mesh) Triangle(id TriangleID) (*Triangle, error) {
	if id < 0 || int(id) >= len(m.triangles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTriangle, id)
	}
	return &m.triangles[id], nil
}

// Triangles returns the triangles in handle order. The slice must not be modified.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Link records a and b as neighbours of each other. The triangles must share
// exactly two vertices and each may have at most three neighbours. Linking an
// already linked pair does nothing.
func (m *Mesh) Link(a, b TriangleID) error {
	ta, err := m.Triangle(a)
	if err != nil {
		return err
	}
	tb, err := m.Triangle(b)
	if err != nil {
		return err
	}

	shared := ta.SharedVertices(tb)
	if a == b || len(shared) != 2 {
		return fmt.Errorf("%w: %v and %v share %d vertices", ErrNotAdjacent, ta, tb, len(shared))
	}
	for _, n := range ta.neighbors {
		if n.ID == b {
			return nil
		}
	}
	if len(ta.neighbors) == 3 {
		return fmt.Errorf("%w: %v", ErrTooManyNeighbors, ta)
	}
	if len(tb.neighbors) == 3 {
		return fmt.Errorf("%w: %v", ErrTooManyNeighbors, tb)
	}

	edge := Edge{A: shared[0], B: shared[1]}
	ta.neighbors = append(ta.neighbors, Neighbor{ID: b, Edge: edge})
	tb.neighbors = append(tb.neighbors, Neighbor{ID: a, Edge: edge})
	return nil
}

// LinkShared links every pair of triangles that share an edge.
func (m *Mesh) LinkShared() error {
	owners := make(map[Edge][]TriangleID, len(m.triangles)*3/2)
	for i := range m.triangles {
		for _, e := range m.triangles[i].Edges() {
			k := e.Key()
			owners[k] = append(owners[k], m.triangles[i].ID)
		}
	}

	for i := range m.triangles {
		for _, e := range m.triangles[i].Edges() {
			ids := owners[e.Key()]
			if len(ids) > 2 {
				return fmt.Errorf("%w: %v", ErrNonManifoldEdge, e)
			}
			if len(ids) == 2 && ids[0] == m.triangles[i].ID {
				if err := m.Link(ids[0], ids[1]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Neighbors returns the handles of the triangles adjacent to id.
func (m *Mesh) Neighbors(id TriangleID) ([]TriangleID, error) {
	t, err := m.Triangle(id)
	if err != nil {
		return nil, err
	}
	ids := make([]TriangleID, len(t.neighbors))
	for i, n := range t.neighbors {
		ids[i] = n.ID
	}
	return ids, nil
}

// CommonEdge returns the edge shared by the adjacent triangles a and b.
func (m *Mesh) CommonEdge(a, b TriangleID) (Edge, error) {
	ta, err := m.Triangle(a)
	if err != nil {
		return Edge{}, err
	}
	if _, err := m.Triangle(b); err != nil {
		return Edge{}, err
	}
	for _, n := range ta.neighbors {
		if n.ID == b {
			return n.Edge, nil
		}
	}
	return Edge{}, fmt.Errorf("%w: #%d and #%d", ErrNotAdjacent, a, b)
}

// Locate returns the first triangle containing p.
func (m *Mesh) Locate(p Vector) (TriangleID, bool) {
	for i := range m.triangles {
		if m.triangles[i].ContainsPoint(p) {
			return m.triangles[i].ID, true
		}
	}
	return NoTriangle, false
}
