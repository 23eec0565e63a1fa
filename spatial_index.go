package main

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"navmesh-planner/navmesh"
)

// nearestCandidates is how many bounding boxes are compared exactly when
// looking for the triangle closest to a point outside the mesh.
const nearestCandidates = 8

// triangleEntry wraps a mesh triangle for R-tree storage
type triangleEntry struct {
	tri  *navmesh.Triangle
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *triangleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// TriangleIndex answers point location queries on a mesh.
type TriangleIndex struct {
	tree *rtreego.Rtree
}

// NewTriangleIndex indexes every triangle of mesh by its bounding box.
func NewTriangleIndex(mesh *navmesh.Mesh) (*TriangleIndex, error) {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	tris := mesh.Triangles()
	for i := range tris {
		bbox, err := triangleBoundingBox(&tris[i])
		if err != nil {
			return nil, fmt.Errorf("index %v: %w", &tris[i], err)
		}
		tree.Insert(&triangleEntry{tri: &tris[i], bbox: bbox})
	}

	return &TriangleIndex{tree: tree}, nil
}

// Len returns the number of indexed triangles.
func (ix *TriangleIndex) Len() int {
	return ix.tree.Size()
}

// Locate returns the triangle containing p.
func (ix *TriangleIndex) Locate(p navmesh.Vector) (navmesh.TriangleID, bool) {
	hits := ix.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(navmesh.Epsilon))

	best := navmesh.NoTriangle
	for _, item := range hits {
		tri := item.(*triangleEntry).tri
		if tri.ContainsPoint(p) && (best == navmesh.NoTriangle || tri.ID < best) {
			best = tri.ID
		}
	}
	return best, best != navmesh.NoTriangle
}

// Nearest returns the triangle containing p or, failing that, the triangle
// closest to p together with the closest point on it.
func (ix *TriangleIndex) Nearest(p navmesh.Vector) (navmesh.TriangleID, navmesh.Vector, bool) {
	if id, ok := ix.Locate(p); ok {
		return id, p, true
	}
	if ix.tree.Size() == 0 {
		return navmesh.NoTriangle, p, false
	}

	best, bestPoint, bestDist := navmesh.NoTriangle, p, math.Inf(1)
	for _, item := range ix.tree.NearestNeighbors(nearestCandidates, rtreego.Point{p.X, p.Y}) {
		if item == nil {
			continue
		}
		tri := item.(*triangleEntry).tri
		c := tri.ClosestPoint(p)
		if d := c.Distance(p); d < bestDist {
			best, bestPoint, bestDist = tri.ID, c, d
		}
	}
	return best, bestPoint, best != navmesh.NoTriangle
}

// triangleBoundingBox computes the axis-aligned bounding box for a triangle
func triangleBoundingBox(tri *navmesh.Triangle) (rtreego.Rect, error) {
	b := orb.MultiPoint{
		toPoint(tri.Vertices[0]),
		toPoint(tri.Vertices[1]),
		toPoint(tri.Vertices[2]),
	}.Bound()

	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}
