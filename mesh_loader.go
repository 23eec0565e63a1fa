package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"navmesh-planner/navmesh"
)

// errNotTriangle is returned for input rings that do not describe a triangle.
var errNotTriangle = errors.New("ring is not a triangle")

// meshFile is the native on-disk mesh format.
type meshFile struct {
	Triangles [][3][2]float64 `json:"triangles"`
}

// LoadMesh reads a mesh from a GeoJSON (.geojson) or native JSON (.json) file
// and links the triangles that share an edge.
func LoadMesh(filename string, logger *log.Logger) (*navmesh.Mesh, error) {
	logger.Info("loading mesh", "file", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var mesh *navmesh.Mesh
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		mesh, err = parseNativeMesh(data)
	default:
		mesh, err = parseGeoJSONMesh(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}

	logger.Info("mesh loaded", "file", filepath.Base(filename), "triangles", mesh.Len())
	return mesh, nil
}

// parseGeoJSONMesh builds a mesh from a FeatureCollection whose Polygon and
// MultiPolygon features are all triangles.
func parseGeoJSONMesh(data []byte) (*navmesh.Mesh, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	mesh := navmesh.NewMesh()
	for i, feature := range fc.Features {
		var polygons []orb.Polygon
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			polygons = []orb.Polygon{g}
		case orb.MultiPolygon:
			polygons = g
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %q", i, feature.Geometry.GeoJSONType())
		}

		for _, polygon := range polygons {
			// Only the outer ring counts; a triangle has no holes.
			if len(polygon) == 0 {
				continue
			}
			if err := addRing(mesh, polygon[0]); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
	}

	if err := mesh.LinkShared(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func addRing(mesh *navmesh.Mesh, ring orb.Ring) error {
	if ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	if len(ring) != 3 {
		return fmt.Errorf("%w: %d vertices", errNotTriangle, len(ring))
	}
	if planar.Area(ring) == 0 {
		return fmt.Errorf("%w: zero area", errNotTriangle)
	}
	_, err := mesh.AddTriangle(toVector(ring[0]), toVector(ring[1]), toVector(ring[2]))
	return err
}

func parseNativeMesh(data []byte) (*navmesh.Mesh, error) {
	var file meshFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mesh: %w", err)
	}

	mesh := navmesh.NewMesh()
	for i, t := range file.Triangles {
		a, b, c := navmesh.V(t[0][0], t[0][1]), navmesh.V(t[1][0], t[1][1]), navmesh.V(t[2][0], t[2][1])
		if _, err := mesh.AddTriangle(a, b, c); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
	}
	if err := mesh.LinkShared(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// SaveMesh writes mesh to filename, as GeoJSON for a .geojson file and in
// the native JSON format otherwise.
func SaveMesh(mesh *navmesh.Mesh, filename string, logger *log.Logger) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(filename)) == ".geojson" {
		data, err = meshPolygons(mesh).MarshalJSON()
	} else {
		data, err = json.MarshalIndent(nativeMesh(mesh), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal mesh: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("mesh saved", "file", filename, "bytes", len(data))
	return nil
}

func nativeMesh(mesh *navmesh.Mesh) meshFile {
	file := meshFile{Triangles: make([][3][2]float64, 0, mesh.Len())}
	for _, t := range mesh.Triangles() {
		var tri [3][2]float64
		for i, v := range t.Vertices {
			tri[i] = [2]float64{v.X, v.Y}
		}
		file.Triangles = append(file.Triangles, tri)
	}
	return file
}

// meshPolygons returns one closed Polygon feature per triangle.
func meshPolygons(mesh *navmesh.Mesh) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range mesh.Triangles() {
		ring := orb.Ring{toPoint(t.Vertices[0]), toPoint(t.Vertices[1]), toPoint(t.Vertices[2]), toPoint(t.Vertices[0])}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["id"] = int(t.ID)
		fc.Append(f)
	}
	return fc
}

// meshLines returns every mesh edge once, as GeoJSON LineStrings for
// visualisation. Edges shared by two triangles carry "portal": true.
func meshLines(mesh *navmesh.Mesh) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	seen := make(map[navmesh.Edge]bool)

	for _, t := range mesh.Triangles() {
		portals := make(map[navmesh.Edge]bool, 3)
		for _, n := range t.Neighbors() {
			portals[n.Edge.Key()] = true
		}
		for _, e := range t.Edges() {
			k := e.Key()
			if seen[k] {
				continue
			}
			seen[k] = true

			f := geojson.NewFeature(orb.LineString{toPoint(k.A), toPoint(k.B)})
			f.Properties["portal"] = portals[k]
			fc.Append(f)
		}
	}
	return fc
}

// routeFeature returns path as a GeoJSON LineString feature.
func routeFeature(path []navmesh.Vector, length float64) *geojson.Feature {
	line := make(orb.LineString, len(path))
	for i, p := range path {
		line[i] = toPoint(p)
	}
	f := geojson.NewFeature(line)
	f.Properties["length"] = length
	return f
}

func toVector(p orb.Point) navmesh.Vector {
	return navmesh.V(p.X(), p.Y())
}

func toPoint(v navmesh.Vector) orb.Point {
	return orb.Point{v.X, v.Y}
}
