package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"navmesh-planner/navmesh"
)

// errOutsideMesh is returned when the start point cannot be placed on the mesh.
var errOutsideMesh = errors.New("start point is not on the mesh")

// Planner answers route queries on one loaded mesh.
type Planner struct {
	ID     uuid.UUID
	mesh   *navmesh.Mesh
	index  *TriangleIndex
	search SearchConfig
}

// NewPlanner indexes mesh for point location. The mesh must not be modified
// afterwards.
func NewPlanner(mesh *navmesh.Mesh, search SearchConfig) (*Planner, error) {
	index, err := NewTriangleIndex(mesh)
	if err != nil {
		return nil, err
	}
	return &Planner{
		ID:     uuid.New(),
		mesh:   mesh,
		index:  index,
		search: search,
	}, nil
}

// Mesh returns the planner's mesh.
func (p *Planner) Mesh() *navmesh.Mesh { return p.mesh }

// Route is the outcome of a route query.
type Route struct {
	Start    navmesh.Vector        // start point after snapping onto the mesh
	Snapped  bool                  // Start differs from the requested point
	Triangle navmesh.TriangleID    // triangle containing Start
	Result   navmesh.Result
	Explored []navmesh.Exploration // only when requested
}

// Feature returns the route as a GeoJSON LineString feature.
func (r *Route) Feature() *geojson.Feature {
	f := routeFeature(r.Result.Path, r.Result.Length)
	f.Properties["goal"] = []float64{r.Result.Goal.X, r.Result.Goal.Y}
	return f
}

// Route finds the shortest path from start to the nearest of goals. A start
// point off the mesh is moved to the closest point of the nearest triangle;
// goals are used as given, so a goal off the mesh is never reached.
func (p *Planner) Route(ctx context.Context, start navmesh.Vector, goals []navmesh.Vector, explored bool) (*Route, error) {
	logger := loggerFromContext(ctx)

	id, snapped, ok := p.index.Nearest(start)
	if !ok {
		return nil, fmt.Errorf("%w: %v", errOutsideMesh, start)
	}
	route := &Route{
		Start:    snapped,
		Snapped:  !snapped.ApproxEqual(start),
		Triangle: id,
	}
	if route.Snapped {
		logger.Warn("start snapped onto mesh", "requested", start, "snapped", snapped, "triangle", id)
	}

	opts := []navmesh.Option{
		navmesh.WithLogger(logger),
		navmesh.WithMaxExpansions(p.search.MaxExpansions),
	}
	if explored {
		opts = append(opts, navmesh.WithExploreFunc(func(e navmesh.Exploration) {
			route.Explored = append(route.Explored, e)
		}))
	}

	if p.search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.search.Timeout)
		defer cancel()
	}

	res, err := navmesh.NewSearcher(p.mesh, opts...).FindPath(ctx, snapped, id, goals)
	route.Result = res
	if err != nil {
		return route, err
	}

	logger.Debug("route computed",
		"mesh", p.ID,
		"triangle", id,
		"found", res.Found,
		"waypoints", len(res.Path),
		"length", res.Length)
	return route, nil
}

// logRoute prints a short summary of a route, first and last waypoints only.
func logRoute(logger *log.Logger, r *Route) {
	path := r.Result.Path
	if !r.Result.Found {
		logger.Info("no path found", "start", r.Start)
		return
	}
	logger.Info("path found", "waypoints", len(path), "length", fmt.Sprintf("%.3f", r.Result.Length), "goal", r.Result.Goal)
	for i := 0; i < len(path) && i < 3; i++ {
		logger.Debug("waypoint", "i", i, "point", path[i])
	}
	if len(path) > 6 {
		logger.Debug("intermediate waypoints", "count", len(path)-6)
	}
	for i := max(3, len(path)-3); i < len(path); i++ {
		logger.Debug("waypoint", "i", i, "point", path[i])
	}
}
