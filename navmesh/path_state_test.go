package navmesh_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navmesh-planner/navmesh"
)

func TestPathState_InitialStateHasZeroBounds(t *testing.T) {
	s := navmesh.NewPathState(lStart, 1)

	_, ok := s.CurrentEdge()
	assert.False(t, ok)
	assert.Equal(t, navmesh.NoTriangle, s.Previous())
	assert.Zero(t, s.ShortestPossiblePathLength())
	assert.Zero(t, s.LongestPossiblePathLength())
	assert.Zero(t, s.EstimatedMinimalOverallCost())
}

func TestPathState_BoundsAlongCorridor(t *testing.T) {
	m, ids := lMesh(t)
	goals := []navmesh.Vector{lGoal}
	s := navmesh.NewPathState(lStart, ids[1])

	require.NoError(t, s.StepTo(m, ids[2], goals))
	e, ok := s.CurrentEdge()
	require.True(t, ok)
	assert.True(t, e.Equal(lPortalOne))
	assert.Equal(t, ids[1], s.Previous())
	assert.Equal(t, ids[2], s.Current())
	assert.InDelta(t, math.Sqrt2, s.ShortestPossiblePathLength(), 1e-9)
	assert.InDelta(t, math.Sqrt(13.25), s.LongestPossiblePathLength(), 1e-9)
	assert.InDelta(t, math.Sqrt(5), s.Heuristic(), 1e-9)
	assert.InDelta(t, math.Sqrt2+math.Sqrt(5), s.EstimatedMinimalOverallCost(), 1e-9)

	require.NoError(t, s.StepTo(m, ids[3], goals))
	assert.Equal(t, []navmesh.Vector{lStart, corner}, s.Path())
	assert.InDelta(t, math.Sqrt2, s.ShortestPossiblePathLength(), 1e-9)
	assert.InDelta(t, math.Sqrt2+math.Sqrt(15.25), s.LongestPossiblePathLength(), 1e-9)
	assert.InDelta(t, 2/math.Sqrt(15.25), s.Heuristic(), 1e-9)

	require.NoError(t, s.FinalizePath(lGoal))
	assert.True(t, s.GoalReached())
	assert.Zero(t, s.Heuristic())
	assert.InDelta(t, math.Sqrt2+math.Sqrt(5), s.EstimatedMinimalOverallCost(), 1e-9)
	assert.Equal(t, s.ShortestPossiblePathLength(), s.LongestPossiblePathLength())
}

func TestPathState_LowerBoundNeverExceedsUpperBound(t *testing.T) {
	m := ringMesh(t)
	start := navmesh.V(1, 3)
	goals := []navmesh.Vector{navmesh.V(5, 3)}

	for _, walk := range [][]navmesh.TriangleID{
		{6, 7, 4, 5, 2, 3, 0, 1},
		{6, 1, 0, 3, 2, 5, 4, 7},
	} {
		s := navmesh.NewPathState(start, walk[0])
		for _, id := range walk[1:] {
			require.NoError(t, s.StepTo(m, id, goals))
			assert.LessOrEqual(t, s.ShortestPossiblePathLength(), s.LongestPossiblePathLength()+1e-12)
			assert.GreaterOrEqual(t, s.Heuristic(), 0.0)
		}
	}
}

func TestPathState_StepToRequiresAdjacency(t *testing.T) {
	m, ids := lMesh(t)
	s := navmesh.NewPathState(lStart, ids[1])

	err := s.StepTo(m, ids[3], nil)
	require.ErrorIs(t, err, navmesh.ErrNotAdjacent)
	assert.True(t, navmesh.IsContractViolation(err))
	assert.Equal(t, ids[1], s.Current(), "failed step leaves the state alone")
}

func TestPathState_ExplorableTrianglesSkipsPrevious(t *testing.T) {
	m, ids := lMesh(t)
	s := navmesh.NewPathState(lStart, ids[1])

	next, err := s.ExplorableTriangles(m)
	require.NoError(t, err)
	assert.ElementsMatch(t, []navmesh.TriangleID{ids[0], ids[2]}, next)

	require.NoError(t, s.StepTo(m, ids[2], nil))
	next, err = s.ExplorableTriangles(m)
	require.NoError(t, err)
	assert.Equal(t, []navmesh.TriangleID{ids[3]}, next)
}

func TestPathState_ReachedGoals(t *testing.T) {
	m, ids := lMesh(t)
	far, near := lGoal, navmesh.V(9, 14.5)
	s := navmesh.NewPathState(lStart, ids[1])

	got, err := s.ReachedGoals(m, []navmesh.Vector{far, near})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.StepTo(m, ids[2], nil))
	got, err = s.ReachedGoals(m, []navmesh.Vector{far, near})
	require.NoError(t, err)
	assert.Equal(t, []navmesh.Vector{near}, got)
}

func TestPathState_CloneIsIndependent(t *testing.T) {
	m, ids := lMesh(t)
	s := navmesh.NewPathState(lStart, ids[1])
	require.NoError(t, s.StepTo(m, ids[2], nil))

	c := s.Clone()
	require.NoError(t, c.StepTo(m, ids[3], nil))
	require.NoError(t, c.FinalizePath(lGoal))

	assert.Equal(t, ids[2], s.Current())
	assert.False(t, s.GoalReached())
	assert.Equal(t, []navmesh.Vector{lStart}, s.Path())
	e, _ := s.CurrentEdge()
	assert.True(t, e.Equal(lPortalOne))
}

func TestPathState_LoopAroundVertexWithFixedApex(t *testing.T) {
	// (1, 1) is an interior vertex shared by all eight triangles of the grid.
	m := gridMesh(t, 2)
	v := navmesh.V(1, 1)
	first, ok := m.Locate(v)
	require.True(t, ok)

	// Starting on the vertex, every portal around it passes through the
	// start, so the apex never leaves it.
	s := navmesh.NewPathState(v, first)
	for step := 0; step < 9; step++ {
		ids, err := s.ExplorableTriangles(m)
		require.NoError(t, err)

		next := navmesh.NoTriangle
		for _, id := range ids {
			tri, err := m.Triangle(id)
			require.NoError(t, err)
			if tri.HasVertex(v) {
				next = id
				break
			}
		}
		require.NotEqual(t, navmesh.NoTriangle, next)
		require.NoError(t, s.StepTo(m, next, nil))

		assert.Equal(t, []navmesh.Vector{v}, s.Path())
		assert.Zero(t, s.ShortestPossiblePathLength())
		// The ninth step crosses the first portal again.
		assert.Equal(t, step == 8, s.Looped(), "step %d", step)
	}
}

func TestPathState_LoopWithMovedApexIsNotLooped(t *testing.T) {
	m := ringMesh(t)
	s := navmesh.NewPathState(navmesh.V(1, 3), 6)

	for _, id := range []navmesh.TriangleID{1, 0, 3, 2, 5, 4, 7, 6, 1} {
		require.NoError(t, s.StepTo(m, id, nil))
		assert.False(t, s.Looped(), "stepping into #%d", id)
	}
	assert.Greater(t, len(s.Path()), 1)
}
