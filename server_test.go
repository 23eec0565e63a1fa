package main

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ServerSuite drives the HTTP API against an in-process server.
type ServerSuite struct {
	suite.Suite
	cfg Config
	srv *Server
	ts  *httptest.Server
}

func (s *ServerSuite) SetupTest() {
	s.cfg = defaultConfig()
	s.cfg.MeshFile = filepath.Join(s.T().TempDir(), "mesh.json")
	s.srv = NewServer(s.cfg, quietLogger())
	s.ts = httptest.NewServer(s.srv.Handler())
}

func (s *ServerSuite) TearDownTest() {
	s.ts.Close()
}

func (s *ServerSuite) do(method, path string, body interface{}) *http.Response {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *ServerSuite) decode(resp *http.Response, v interface{}) {
	s.Require().Equal("application/json", resp.Header.Get("Content-Type"))
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *ServerSuite) uploadRing() {
	resp := s.do(http.MethodPost, "/mesh", ringGeoJSON)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerSuite) TestHealth() {
	var body map[string]interface{}
	s.decode(s.do(http.MethodGet, "/health", nil), &body)
	s.Equal("waiting for mesh", body["status"])
	s.Equal(false, body["hasMesh"])

	s.uploadRing()
	body = nil
	s.decode(s.do(http.MethodGet, "/health", nil), &body)
	s.Equal("ready", body["status"])
	s.Equal(float64(8), body["triangles"])
	s.NotEmpty(body["meshId"])
}

func (s *ServerSuite) TestUploadMesh() {
	var body map[string]interface{}
	resp := s.do(http.MethodPost, "/mesh", ringGeoJSON)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &body)
	s.Equal(true, body["success"])
	s.Equal(float64(8), body["triangles"])
	first := body["meshId"]

	resp = s.do(http.MethodPost, "/mesh", ringGeoJSON)
	s.Equal(http.StatusConflict, resp.StatusCode)

	body = nil
	resp = s.do(http.MethodPost, "/mesh?force=true&saveToFile=true", ringGeoJSON)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &body)
	s.NotEqual(first, body["meshId"])

	saved, err := LoadMesh(s.cfg.MeshFile, quietLogger())
	s.Require().NoError(err)
	s.Equal(8, saved.Len())
}

func (s *ServerSuite) TestConcurrentUploadsInstallOneMesh() {
	const uploads = 8
	codes := make(chan int, uploads)
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(s.ts.URL+"/mesh", "application/json", strings.NewReader(ringGeoJSON))
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	s.Equal(map[int]int{http.StatusOK: 1, http.StatusConflict: uploads - 1}, counts)
}

func (s *ServerSuite) TestUploadTooLarge() {
	s.ts.Close()
	s.cfg.MaxMeshBytes = 64
	s.srv = NewServer(s.cfg, quietLogger())
	s.ts = httptest.NewServer(s.srv.Handler())

	resp := s.do(http.MethodPost, "/mesh", ringGeoJSON)
	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
	s.Nil(s.srv.current())
}

func (s *ServerSuite) TestUploadInvalidMesh() {
	resp := s.do(http.MethodPost, "/mesh", "not json")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	square := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":
		{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`
	resp = s.do(http.MethodPost, "/mesh", square)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Nil(s.srv.current())
}

func (s *ServerSuite) TestRoute() {
	s.uploadRing()

	var body RouteResponse
	resp := s.do(http.MethodPost, "/route", RouteRequest{
		Start: Point{1, 3},
		Goals: []Point{{5, 3}},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &body)

	s.True(body.Success)
	s.NotEmpty(body.RequestID)
	s.Len(body.Path, 4)
	s.Equal(Point{1, 3}, body.Path[0])
	s.Equal(Point{5, 3}, body.Path[3])
	s.Require().NotNil(body.Goal)
	s.Equal(Point{5, 3}, *body.Goal)
	s.InDelta(2+2*math.Sqrt2, body.Length, 1e-9)
	s.Empty(body.Explored)
}

func (s *ServerSuite) TestRouteNearestGoalAndExplored() {
	s.uploadRing()

	var body RouteResponse
	s.decode(s.do(http.MethodPost, "/route", RouteRequest{
		Start:           Point{1, 4.5},
		Goals:           []Point{{5, 3}, {5, 4.5}},
		IncludeExplored: true,
	}), &body)

	s.True(body.Success)
	s.Equal(Point{5, 4.5}, *body.Goal)
	s.InDelta(4.0, body.Length, 1e-9)
	s.NotEmpty(body.Explored)
}

func (s *ServerSuite) TestRouteUnreachable() {
	s.uploadRing()

	var body RouteResponse
	resp := s.do(http.MethodPost, "/route", RouteRequest{Start: Point{1, 3}, Goals: []Point{{3, 3}}})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &body)
	s.False(body.Success)
	s.NotEmpty(body.Message)
	s.Empty(body.Path)
	s.Nil(body.Goal)
}

func (s *ServerSuite) TestRouteBadRequests() {
	resp := s.do(http.MethodPost, "/route", RouteRequest{Start: Point{1, 3}, Goals: []Point{{5, 3}}})
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode, "no mesh")

	s.uploadRing()
	resp = s.do(http.MethodPost, "/route", "{")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/route", RouteRequest{Start: Point{1, 3}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestRouteExpansionLimit() {
	s.cfg.Search.MaxExpansions = 1
	s.ts.Close()
	s.srv = NewServer(s.cfg, quietLogger())
	s.ts = httptest.NewServer(s.srv.Handler())
	s.uploadRing()

	resp := s.do(http.MethodPost, "/route", RouteRequest{Start: Point{1, 3}, Goals: []Point{{5, 3}}})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *ServerSuite) TestMeshLines() {
	resp := s.do(http.MethodGet, "/mesh/lines", nil)
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	s.uploadRing()
	var raw json.RawMessage
	s.decode(s.do(http.MethodGet, "/mesh/lines", nil), &raw)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	s.Require().NoError(err)
	s.Len(fc.Features, 16)
}

func (s *ServerSuite) TestCORSPreflight() {
	resp := s.do(http.MethodOptions, "/route", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := NewServer(defaultConfig(), quietLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/route", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
