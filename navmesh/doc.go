// Package navmesh finds shortest paths for a point agent moving through a
// triangulated walkable region.
//
// A Mesh holds the triangles and their adjacency. A Searcher runs a best-first
// search over triangle sequences; each partial sequence is tracked by a
// PathState, which pulls the path taut through the crossed edges with a Funnel
// and keeps a lower and upper bound on the remaining distance to the most
// recently crossed edge. A per-edge table of the best known upper bound prunes
// partial paths that can no longer win, which also stops the search from
// circling around holes forever.
//
// Example:
//
//	mesh := navmesh.NewMesh()
//	a, _ := mesh.AddTriangle(navmesh.V(0, 0), navmesh.V(4, 0), navmesh.V(0, 4))
//	b, _ := mesh.AddTriangle(navmesh.V(4, 0), navmesh.V(4, 4), navmesh.V(0, 4))
//	_ = mesh.Link(a, b)
//
//	res, err := navmesh.NewSearcher(mesh).FindPath(ctx, navmesh.V(1, 1), a, []navmesh.Vector{navmesh.V(3, 3)})
//	if err != nil {
//	    return err
//	}
//	if res.Found {
//	    fmt.Println(res.Path, res.Length)
//	}
package navmesh
