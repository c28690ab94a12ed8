// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package spatial

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

var (
	scale0Size = grid.Scale(0).CellMeters()
	scale1Size = grid.Scale(1).CellMeters()
)

type seedPoint struct {
	id      string
	dataset string
	lon     float64
	lat     float64
	status  string
	areas   []string
}

// The four quadrant points share one cell at scale 0 and sit in four
// different cells at scale 1.
var quadrants = []seedPoint{
	{"nw", "ds1", 5, 17, models.StatusRegular, []string{"BG", "BG.1"}},
	{"ne", "ds1", 17, 17, models.StatusThreat, []string{"BG", "BG.1"}},
	{"sw", "ds1", 5, 5, models.StatusCleaned, []string{"BG", "BG.2"}},
	{"se", "ds1", 17, 5, models.StatusRegular, []string{"BG", "BG.2"}},
}

func setupAdapter(t *testing.T, points ...seedPoint) (*Adapter, *store.Store) {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true, Compression: "none"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for _, v := range Views() {
		require.NoError(t, s.RegisterView(v))
	}
	for _, p := range points {
		addPoint(t, s, p)
	}
	return NewAdapter(s), s
}

func addPoint(t *testing.T, s *store.Store, p seedPoint) {
	t.Helper()
	_, err := s.Create(context.Background(), models.KindTrashpoint, p.id, store.Patch{
		"datasetId": p.dataset,
		"location":  models.Location{Latitude: p.lat, Longitude: p.lon},
		"status":    p.status,
		"areas":     p.areas,
	}, nil)
	require.NoError(t, err)
}

func quadrantBox(t *testing.T) grid.BoundingBox {
	t.Helper()
	box, err := grid.NewBoundingBox(orb.Point{1, 21}, orb.Point{21, 1})
	require.NoError(t, err)
	return box
}

func pointIDs(points []models.PointSummary) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.ID)
	}
	sort.Strings(out)
	return out
}

func clusterTotal(clusters []models.Cluster) int {
	n := 0
	for _, c := range clusters {
		n += c.Count
	}
	return n
}

func TestViews(t *testing.T) {
	t.Parallel()

	views := Views()
	assert.Len(t, views, len(grid.Scales())+1)
	assert.Equal(t, "grid0", views[0].Name)
	assert.Equal(t, "grid15", views[15].Name)
	assert.Equal(t, ViewCountAreaStatus, views[16].Name)
}

func TestClustersInBoundingBox(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()
	box := quadrantBox(t)

	t.Run("coarse scale merges the quadrants", func(t *testing.T) {
		clusters, err := a.ClustersInBoundingBox(ctx, "ds1", scale0Size, box)
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.Equal(t, 4, clusters[0].Count)
		assert.Equal(t, models.GridCoordinates{8, 3}, clusters[0].Coordinates)
		assert.InDelta(t, 11.25, clusters[0].Center.Longitude, 1e-9)
		assert.InDelta(t, 11.25, clusters[0].Center.Latitude, 1e-9)
	})

	t.Run("finer scale splits them", func(t *testing.T) {
		clusters, err := a.ClustersInBoundingBox(ctx, "ds1", scale1Size, box)
		require.NoError(t, err)
		require.Len(t, clusters, 4)
		for _, c := range clusters {
			assert.Equal(t, 1, c.Count)
		}
		var cells []models.GridCoordinates
		for _, c := range clusters {
			cells = append(cells, c.Coordinates)
		}
		assert.ElementsMatch(t, []models.GridCoordinates{{16, 6}, {17, 6}, {16, 7}, {17, 7}}, cells)
	})

	t.Run("other datasets are invisible", func(t *testing.T) {
		clusters, err := a.ClustersInBoundingBox(ctx, "ds2", scale0Size, box)
		require.NoError(t, err)
		assert.Empty(t, clusters)
	})
}

func TestOverSelectedRowsAreDropped(t *testing.T) {
	t.Parallel()
	// "south" shares column 16 with the box at scale 1 but lies in row 9,
	// so it falls between the scan bounds [16,6] and [17,7].
	south := seedPoint{"south", "ds1", 5, -15, models.StatusRegular, []string{"BG"}}
	a, _ := setupAdapter(t, append([]seedPoint{south}, quadrants...)...)
	ctx := context.Background()
	box := quadrantBox(t)

	clusters, err := a.ClustersInBoundingBox(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.Equal(t, 4, clusterTotal(clusters))
	for _, c := range clusters {
		assert.NotEqual(t, models.GridCoordinates{16, 9}, c.Coordinates)
	}

	points, err := a.PointsInBoundingBox(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.Equal(t, []string{"ne", "nw", "se", "sw"}, pointIDs(points))

	isolated, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.NotContains(t, pointIDs(isolated), "south")
}

func TestIsolatedPointsInBoundingBox(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()
	box := quadrantBox(t)

	isolated, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.Empty(t, isolated, "the single scale-0 cell holds four points")

	isolated, err = a.IsolatedPointsInBoundingBox(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.Equal(t, []string{"ne", "nw", "se", "sw"}, pointIDs(isolated))
	for _, p := range isolated {
		if p.ID == "nw" {
			assert.Equal(t, models.GridCoordinates{16, 6}, p.Coordinates)
			assert.Equal(t, models.Location{Latitude: 17, Longitude: 5}, p.Location)
			assert.Equal(t, []string{"BG", "BG.1"}, p.Areas)
		}
	}
}

func TestOverview(t *testing.T) {
	t.Parallel()
	extra := seedPoint{"nw2", "ds1", 6, 18, models.StatusRegular, []string{"BG"}}
	a, _ := setupAdapter(t, append([]seedPoint{extra}, quadrants...)...)
	ctx := context.Background()
	box := quadrantBox(t)

	ov, err := a.Overview(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Scale)
	require.Len(t, ov.Clusters, 1)
	assert.Equal(t, 2, ov.Clusters[0].Count)
	assert.Equal(t, models.GridCoordinates{16, 6}, ov.Clusters[0].Coordinates)
	assert.Equal(t, []string{"ne", "se", "sw"}, pointIDs(ov.Points))

	empty, err := a.Overview(ctx, "nope", scale1Size, box)
	require.NoError(t, err)
	assert.NotNil(t, empty.Clusters)
	assert.NotNil(t, empty.Points)
	assert.Empty(t, empty.Clusters)
}

func TestAggregatesAgree(t *testing.T) {
	t.Parallel()
	points := append([]seedPoint{
		{"a", "ds1", 2, 3, models.StatusRegular, nil},
		{"b", "ds1", 2.1, 3.1, models.StatusRegular, nil},
		{"c", "ds1", 40, -10, models.StatusThreat, nil},
	}, quadrants...)
	a, _ := setupAdapter(t, points...)
	ctx := context.Background()

	box, err := grid.NewBoundingBox(orb.Point{-10, 30}, orb.Point{50, -20})
	require.NoError(t, err)

	for _, s := range []grid.Scale{0, 1, 3, 7} {
		size := s.CellMeters()
		clusters, err := a.ClustersInBoundingBox(ctx, "ds1", size, box)
		require.NoError(t, err)
		inBox, err := a.PointsInBoundingBox(ctx, "ds1", size, box)
		require.NoError(t, err)
		isolated, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", size, box)
		require.NoError(t, err)

		assert.Equal(t, len(inBox), clusterTotal(clusters), "scale %d", s)
		singles := 0
		for _, c := range clusters {
			if c.Count == 1 {
				singles++
			}
		}
		assert.Equal(t, singles, len(isolated), "scale %d", s)
	}
}

func TestPointsInCell(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()

	first, err := a.PointsInCell(ctx, "ds1", scale0Size, grid.Cell{Col: 8, Row: 3})
	require.NoError(t, err)
	second, err := a.PointsInCell(ctx, "ds1", scale0Size, grid.Cell{Col: 8, Row: 3})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ne", "nw", "se", "sw"}, pointIDs(first))

	none, err := a.PointsInCell(ctx, "ds1", scale0Size, grid.Cell{Col: 0, Row: 0})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPointsStrictlyInBoundingBox(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()

	// Same scale-0 cell for all four, but only "sw" lies inside this box.
	box, err := grid.NewBoundingBox(orb.Point{1, 10}, orb.Point{10, 1})
	require.NoError(t, err)

	loose, err := a.PointsInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.Len(t, loose, 4)

	strict, err := a.PointsStrictlyInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.Equal(t, []string{"sw"}, pointIDs(strict))
}

func TestMovedPointLeavesItsOldCell(t *testing.T) {
	t.Parallel()
	a, s := setupAdapter(t, quadrants...)
	ctx := context.Background()

	doc, err := s.ReadOne(ctx, models.KindTrashpoint, "nw")
	require.NoError(t, err)
	_, err = s.ConditionalUpdate(ctx, doc, store.Patch{
		"location": models.Location{Latitude: -60, Longitude: -120},
	}, nil)
	require.NoError(t, err)

	points, err := a.PointsInCell(ctx, "ds1", scale1Size, grid.Cell{Col: 16, Row: 6})
	require.NoError(t, err)
	assert.Empty(t, points)

	cell, err := grid.CellFor(orb.Point{-120, -60}, 1)
	require.NoError(t, err)
	points, err = a.PointsInCell(ctx, "ds1", scale1Size, cell)
	require.NoError(t, err)
	assert.Equal(t, []string{"nw"}, pointIDs(points))
}

func TestAntimeridianBox(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t,
		seedPoint{"east", "ds1", 179, 0, models.StatusRegular, nil},
		seedPoint{"west", "ds1", -179, 0, models.StatusRegular, nil},
		seedPoint{"far", "ds1", 0, 0, models.StatusRegular, nil},
	)
	ctx := context.Background()

	box, err := grid.NewBoundingBox(orb.Point{170, 10}, orb.Point{-170, -10})
	require.NoError(t, err)
	require.True(t, box.CrossesAntimeridian())

	points, err := a.PointsStrictlyInBoundingBox(ctx, "ds1", grid.Scale(4).CellMeters(), box)
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "west"}, pointIDs(points))
}

func TestWideAntimeridianBoxCountsEachPointOnce(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()

	// Wraps nearly the whole world; both edges sit in the quadrants' cell.
	box, err := grid.NewBoundingBox(orb.Point{10.5, 21}, orb.Point{10.2, 1})
	require.NoError(t, err)
	require.True(t, box.CrossesAntimeridian())

	clusters, err := a.ClustersInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 4, clusterTotal(clusters))

	points, err := a.PointsInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.Equal(t, []string{"ne", "nw", "se", "sw"}, pointIDs(points))

	isolated, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", scale1Size, box)
	require.NoError(t, err)
	assert.Len(t, isolated, 4)
}

func TestEmptyResultsAreNotNil(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()
	box, err := grid.NewBoundingBox(orb.Point{-100, -40}, orb.Point{-90, -50})
	require.NoError(t, err)

	points, err := a.PointsInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	clusters, err := a.ClustersInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.NotNil(t, clusters)

	isolated, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", scale0Size, box)
	require.NoError(t, err)
	assert.NotNil(t, isolated)

	data, err := json.Marshal(isolated)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCountByRegion(t *testing.T) {
	t.Parallel()
	a, _ := setupAdapter(t, quadrants...)
	ctx := context.Background()

	total, err := a.CountByRegion(ctx, "BG", false)
	require.NoError(t, err)
	assert.Equal(t, 4, total.Total)
	assert.Nil(t, total.ByStatus)

	split, err := a.CountByRegion(ctx, "BG.1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, split.Total)
	assert.Equal(t, map[string]int{models.StatusRegular: 1, models.StatusThreat: 1}, split.ByStatus)

	// An area with no trashpoints counts zero.
	none, err := a.CountByRegion(ctx, "BG.3", true)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Empty(t, none.ByStatus)
}

type fakeQuerier struct {
	rows []store.Row
	err  error
}

func (f *fakeQuerier) Query(context.Context, string, store.QueryParams) (*store.QueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &store.QueryResult{Rows: f.rows}, nil
}

func TestIndexShapeErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	box := quadrantBox(t)

	tests := []struct {
		name string
		row  store.Row
	}{
		{
			name: "key is not a tuple",
			row:  store.Row{Key: "ds1", RawKey: json.RawMessage(`"ds1"`), Value: json.RawMessage(`1`)},
		},
		{
			name: "cell is not numeric",
			row: store.Row{
				Key:    []any{"ds1", []any{"a", "b"}},
				RawKey: json.RawMessage(`["ds1",["a","b"]]`),
				Value:  json.RawMessage(`1`),
			},
		},
		{
			name: "count is not a number",
			row: store.Row{
				Key:    []any{"ds1", []any{float64(8), float64(3)}},
				RawKey: json.RawMessage(`["ds1",[8,3]]`),
				Value:  json.RawMessage(`{"x":1}`),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&fakeQuerier{rows: []store.Row{tt.row}})
			_, err := a.ClustersInBoundingBox(ctx, "ds1", scale0Size, box)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIndexShape)
			var shape *IndexShapeError
			require.ErrorAs(t, err, &shape)
			assert.Equal(t, GridViewName(0), shape.View)
		})
	}

	t.Run("point without id", func(t *testing.T) {
		a := NewAdapter(&fakeQuerier{rows: []store.Row{{
			Key:    []any{"ds1", []any{float64(8), float64(3)}},
			RawKey: json.RawMessage(`["ds1",[8,3]]`),
			Value:  json.RawMessage(`{"status":"regular"}`),
		}}})
		_, err := a.PointsInBoundingBox(ctx, "ds1", scale0Size, box)
		assert.ErrorIs(t, err, ErrIndexShape)
	})

	t.Run("null rows are skipped", func(t *testing.T) {
		a := NewAdapter(&fakeQuerier{rows: []store.Row{{
			Key:    []any{"ds1", []any{float64(8), float64(3)}},
			RawKey: json.RawMessage(`["ds1",[8,3]]`),
			Value:  json.RawMessage(`null`),
		}}})
		points, err := a.IsolatedPointsInBoundingBox(ctx, "ds1", scale0Size, box)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("store errors pass through", func(t *testing.T) {
		a := NewAdapter(&fakeQuerier{err: store.ErrStoreUnavailable})
		_, err := a.ClustersInBoundingBox(ctx, "ds1", scale0Size, box)
		assert.ErrorIs(t, err, store.ErrStoreUnavailable)
		assert.False(t, errors.Is(err, ErrIndexShape))
	})
}
