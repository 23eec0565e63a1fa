package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"navmesh-planner/navmesh"
)

// Point is a position on the wire.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vector() navmesh.Vector { return navmesh.V(p.X, p.Y) }

func pointOf(v navmesh.Vector) Point { return Point{X: v.X, Y: v.Y} }

type RouteRequest struct {
	Start           Point   `json:"start"`
	Goals           []Point `json:"goals"`
	IncludeExplored bool    `json:"includeExplored,omitempty"`
}

type RouteResponse struct {
	RequestID string                `json:"requestId"`
	Path      []Point               `json:"path"`
	Length    float64               `json:"length,omitempty"`
	Goal      *Point                `json:"goal,omitempty"`
	Start     Point                 `json:"start"`
	Snapped   bool                  `json:"snapped,omitempty"`
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
	Expanded  int                   `json:"expanded"`
	Explored  []navmesh.Exploration `json:"explored,omitempty"`
}

// Server serves route queries over HTTP. The planner is replaced as a whole
// when a new mesh is uploaded.
type Server struct {
	cfg    Config
	logger *log.Logger

	mu      sync.RWMutex
	planner *Planner
}

func NewServer(cfg Config, logger *log.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// errMeshLoaded is returned by InstallMesh when a mesh is present and
// replacing it was not requested.
var errMeshLoaded = errors.New("mesh already loaded")

// SetMesh installs mesh as the current mesh and returns its planner.
func (s *Server) SetMesh(mesh *navmesh.Mesh) (*Planner, error) {
	return s.InstallMesh(mesh, true)
}

// InstallMesh installs mesh unless one is already loaded and replace is false.
// The check and the swap happen under one lock.
func (s *Server) InstallMesh(mesh *navmesh.Mesh, replace bool) (*Planner, error) {
	p, err := NewPlanner(mesh, s.cfg.Search)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.planner != nil && !replace {
		return nil, errMeshLoaded
	}
	s.planner = p
	return p, nil
}

func (s *Server) current() *Planner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planner
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/health", s.healthHandler)
	r.Post("/mesh", s.meshHandler)
	r.Get("/mesh/lines", s.meshLinesHandler)
	r.Post("/route", s.routeHandler)
	return r
}

// cors adds CORS headers to allow frontend requests
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// POST /route - Compute a route from start to the nearest goal
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	logger := s.logger.With("request", reqID)

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Goals) == 0 {
		writeError(w, http.StatusBadRequest, "at least one goal is required")
		return
	}

	planner := s.current()
	if planner == nil {
		writeError(w, http.StatusServiceUnavailable, "no mesh loaded, POST /mesh first")
		return
	}

	goals := make([]navmesh.Vector, len(req.Goals))
	for i, g := range req.Goals {
		goals[i] = g.vector()
	}
	logger.Info("route request", "start", req.Start.vector(), "goals", len(goals))

	route, err := planner.Route(withLogger(r.Context(), logger), req.Start.vector(), goals, req.IncludeExplored)
	switch {
	case errors.Is(err, errOutsideMesh):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, navmesh.ErrExpansionLimit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case navmesh.IsContractViolation(err):
		logger.Error("malformed mesh", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		logger.Warn("route aborted", "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp := RouteResponse{
		RequestID: reqID,
		Path:      make([]Point, len(route.Result.Path)),
		Start:     pointOf(route.Start),
		Snapped:   route.Snapped,
		Success:   route.Result.Found,
		Expanded:  route.Result.Expanded,
		Explored:  route.Explored,
	}
	for i, p := range route.Result.Path {
		resp.Path[i] = pointOf(p)
	}
	if route.Result.Found {
		goal := pointOf(route.Result.Goal)
		resp.Goal = &goal
		resp.Length = route.Result.Length
	} else {
		resp.Message = "no goal is reachable from the start point"
	}
	logRoute(logger, route)

	writeJSON(w, http.StatusOK, resp)
}

// POST /mesh - Replace the mesh with an uploaded GeoJSON mesh
func (s *Server) meshHandler(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	save, _ := strconv.ParseBool(r.URL.Query().Get("saveToFile"))

	if s.current() != nil && !force {
		s.meshConflict(w)
		return
	}

	prog := newProgress(s.logger)
	var body json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxMeshBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("mesh exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mesh, err := parseGeoJSONMesh(body)
	if err != nil {
		s.logger.Warn("rejected mesh", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	planner, err := s.InstallMesh(mesh, force)
	switch {
	case errors.Is(err, errMeshLoaded):
		// another upload won the race
		s.meshConflict(w)
		return
	case err != nil:
		s.logger.Error("failed to index mesh", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	prog.done("mesh installed", "mesh", planner.ID, "triangles", mesh.Len())

	if save && s.cfg.MeshFile != "" {
		if err := SaveMesh(mesh, s.cfg.MeshFile, s.logger); err != nil {
			s.logger.Error("failed to save mesh", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"meshId":    planner.ID.String(),
		"triangles": mesh.Len(),
	})
}

func (s *Server) meshConflict(w http.ResponseWriter) {
	s.logger.Warn("mesh already loaded, set force=true to replace it")
	writeJSON(w, http.StatusConflict, map[string]interface{}{
		"success": false,
		"error":   errMeshLoaded.Error(),
		"message": "Set force=true to replace the mesh, or restart the server.",
	})
}

// GET /mesh/lines - Mesh edges as GeoJSON for visualisation
func (s *Server) meshLinesHandler(w http.ResponseWriter, r *http.Request) {
	planner := s.current()
	if planner == nil {
		writeError(w, http.StatusServiceUnavailable, "no mesh loaded, POST /mesh first")
		return
	}
	writeJSON(w, http.StatusOK, meshLines(planner.Mesh()))
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	planner := s.current()

	resp := map[string]interface{}{
		"status":    "ready",
		"hasMesh":   planner != nil,
		"triangles": 0,
	}
	if planner == nil {
		resp["status"] = "waiting for mesh"
	} else {
		resp["meshId"] = planner.ID.String()
		resp["triangles"] = planner.Mesh().Len()
	}
	writeJSON(w, http.StatusOK, resp)
}
