// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package grid maps geographic coordinates onto a fixed family of nested
// square grids and turns bounding boxes into inclusive cell ranges.
//
// The world (longitude -180..180, latitude 90..-90) is divided at scale s into
// cells of 360/2^(s+4) degrees. Scale 0 is the coarsest (22.5 degree cells);
// every cell at scale s splits into exactly 2x2 cells at scale s+1. Columns
// grow eastwards from the antimeridian and rows grow southwards from the north
// pole, so the north-west corner of a box always quantizes to the smallest
// (column, row) of its range.
//
// Everything here is pure; nothing touches storage.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	// MinScale is the coarsest supported scale.
	MinScale Scale = 0
	// MaxScale is the finest supported scale.
	MaxScale Scale = 15

	// MetersPerDegree is the nominal length of one degree at the equator.
	MetersPerDegree = 111320.0
)

var (
	// ErrUnknownScale is returned for scales outside MinScale..MaxScale.
	ErrUnknownScale = errors.New("grid: unknown scale")

	// ErrInvalidBoundingBox is returned for boxes with non-finite corners.
	ErrInvalidBoundingBox = errors.New("grid: invalid bounding box")

	// ErrCrossesAntimeridian is returned by CellRangeForBoundingBox when the
	// north-west longitude lies east of the south-east longitude. Use
	// CellRangesForBoundingBox to split such a box.
	ErrCrossesAntimeridian = fmt.Errorf("%w: box crosses the antimeridian", ErrInvalidBoundingBox)

	// ErrInvalidPoint is returned for coordinates that are NaN or infinite.
	ErrInvalidPoint = errors.New("grid: invalid point")
)

// Scale selects one grid resolution.
type Scale int

// Scales returns every supported scale, coarsest first.
func Scales() []Scale {
	out := make([]Scale, 0, MaxScale-MinScale+1)
	for s := MinScale; s <= MaxScale; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is a supported scale.
func (s Scale) Valid() bool {
	return s >= MinScale && s <= MaxScale
}

// Columns is the number of cell columns spanning 360 degrees of longitude.
func (s Scale) Columns() int {
	return 1 << (uint(s) + 4)
}

// Rows is the number of cell rows spanning 180 degrees of latitude.
func (s Scale) Rows() int {
	return 1 << (uint(s) + 3)
}

// CellDegrees is the edge length of one cell in degrees.
func (s Scale) CellDegrees() float64 {
	return 360 / float64(s.Columns())
}

// CellMeters is the nominal edge length of one cell in metres.
func (s Scale) CellMeters() float64 {
	return s.CellDegrees() * MetersPerDegree
}

func (s Scale) String() string {
	return fmt.Sprintf("scale%d", int(s))
}

// ParseScale validates an integer scale.
func ParseScale(v int) (Scale, error) {
	s := Scale(v)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownScale, v)
	}
	return s, nil
}

// ScaleForCellSize returns the coarsest scale whose cell size does not exceed
// meters. Sizes finer than MaxScale, non-positive sizes and NaN all map to
// MaxScale; sizes at or above the coarsest cell map to MinScale.
func ScaleForCellSize(meters float64) Scale {
	if math.IsNaN(meters) || meters <= 0 {
		return MaxScale
	}
	for s := MinScale; s <= MaxScale; s++ {
		if s.CellMeters() <= meters {
			return s
		}
	}
	return MaxScale
}

// Cell identifies one grid cell at an implied scale.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// Parent returns the cell containing c at the next coarser scale.
func (c Cell) Parent() Cell {
	return Cell{Col: c.Col >> 1, Row: c.Row >> 1}
}

// CellRange is an inclusive rectangle of cells with Start <= End componentwise.
type CellRange struct {
	Start Cell `json:"start"`
	End   Cell `json:"end"`
}

// Contains reports whether c lies inside the range.
func (r CellRange) Contains(c Cell) bool {
	return CellInRange(c, r.Start, r.End)
}

// Count is the number of cells in the range.
func (r CellRange) Count() int {
	return (r.End.Col - r.Start.Col + 1) * (r.End.Row - r.Start.Row + 1)
}

// CellInRange reports whether cell lies within the rectangle spanned by start
// and end, inclusive on every edge.
//
// Ranged index queries over (partition, (col, row)) keys can only bound the
// column exactly; rows of intermediate columns come back regardless of the
// requested row range. Every consumer of such a query must filter with this.
func CellInRange(cell, start, end Cell) bool {
	return cell.Col >= start.Col && cell.Col <= end.Col &&
		cell.Row >= start.Row && cell.Row <= end.Row
}

// CellFor quantizes p (longitude, latitude) to its cell at scale s.
// Latitude is clamped to [-90, 90]; longitude is wrapped into [-180, 180].
func CellFor(p orb.Point, s Scale) (Cell, error) {
	if !s.Valid() {
		return Cell{}, fmt.Errorf("%w: %d", ErrUnknownScale, int(s))
	}
	lon, lat, err := normalize(p)
	if err != nil {
		return Cell{}, err
	}
	deg := s.CellDegrees()
	col := clampInt(int(math.Floor((lon+180)/deg)), 0, s.Columns()-1)
	row := clampInt(int(math.Floor((90-lat)/deg)), 0, s.Rows()-1)
	return Cell{Col: col, Row: row}, nil
}

// CellsFor returns the cell of p at every scale, indexed by scale.
func CellsFor(p orb.Point) ([]Cell, error) {
	out := make([]Cell, 0, MaxScale-MinScale+1)
	for _, s := range Scales() {
		c, err := CellFor(p, s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CellBounds returns the geographic extent of c at scale s.
func CellBounds(c Cell, s Scale) orb.Bound {
	deg := s.CellDegrees()
	minLon := -180 + float64(c.Col)*deg
	maxLat := 90 - float64(c.Row)*deg
	return orb.Bound{
		Min: orb.Point{minLon, maxLat - deg},
		Max: orb.Point{minLon + deg, maxLat},
	}
}

// CellCenter returns the centre of c at scale s.
func CellCenter(c Cell, s Scale) orb.Point {
	return CellBounds(c, s).Center()
}

// CellRangeForBoundingBox quantizes both corners at scale s. Latitudes may be
// given in either order; a north-west longitude east of the south-east
// longitude is treated as an antimeridian crossing and rejected with
// ErrCrossesAntimeridian.
func CellRangeForBoundingBox(nw, se orb.Point, s Scale) (CellRange, error) {
	box, err := NewBoundingBox(nw, se)
	if err != nil {
		return CellRange{}, err
	}
	if box.CrossesAntimeridian() {
		return CellRange{}, ErrCrossesAntimeridian
	}
	return box.cellRange(box.NorthWest, box.SouthEast, s)
}

// CellRangesForBoundingBox is like CellRangeForBoundingBox but splits a box
// crossing the antimeridian into its western part (up to 180) and its
// eastern part (from -180). Boxes that do not cross yield a single range, as
// do crossing boxes whose halves would share a column. The returned ranges
// never overlap.
func CellRangesForBoundingBox(nw, se orb.Point, s Scale) ([]CellRange, error) {
	box, err := NewBoundingBox(nw, se)
	if err != nil {
		return nil, err
	}
	if !box.CrossesAntimeridian() {
		r, err := box.cellRange(box.NorthWest, box.SouthEast, s)
		if err != nil {
			return nil, err
		}
		return []CellRange{r}, nil
	}

	west, err := box.cellRange(box.NorthWest, orb.Point{180, box.SouthEast.Lat()}, s)
	if err != nil {
		return nil, err
	}
	east, err := box.cellRange(orb.Point{-180, box.NorthWest.Lat()}, box.SouthEast, s)
	if err != nil {
		return nil, err
	}
	// Both edges in one column, or further apart than the world is wide:
	// the halves would overlap, so the box covers every column.
	if east.End.Col >= west.Start.Col {
		return []CellRange{{
			Start: Cell{Col: 0, Row: west.Start.Row},
			End:   Cell{Col: s.Columns() - 1, Row: west.End.Row},
		}}, nil
	}
	return []CellRange{west, east}, nil
}

// BoundingBox is a geographic box given by its north-west and south-east
// corners. NorthWest longitude greater than SouthEast longitude means the box
// wraps across the antimeridian.
type BoundingBox struct {
	NorthWest orb.Point
	SouthEast orb.Point
}

// NewBoundingBox validates the corners, orders the latitudes and clamps them
// to the poles.
func NewBoundingBox(nw, se orb.Point) (BoundingBox, error) {
	nwLon, nwLat, err := normalize(nw)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("%w: north-west corner: %w", ErrInvalidBoundingBox, err)
	}
	seLon, seLat, err := normalize(se)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("%w: south-east corner: %w", ErrInvalidBoundingBox, err)
	}
	if nwLat < seLat {
		nwLat, seLat = seLat, nwLat
	}
	return BoundingBox{
		NorthWest: orb.Point{nwLon, nwLat},
		SouthEast: orb.Point{seLon, seLat},
	}, nil
}

// CrossesAntimeridian reports whether the box wraps from 180 to -180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.NorthWest.Lon() > b.SouthEast.Lon()
}

// Bounds returns the box as one or two orb.Bounds (two when it wraps).
func (b BoundingBox) Bounds() []orb.Bound {
	if !b.CrossesAntimeridian() {
		return []orb.Bound{{
			Min: orb.Point{b.NorthWest.Lon(), b.SouthEast.Lat()},
			Max: orb.Point{b.SouthEast.Lon(), b.NorthWest.Lat()},
		}}
	}
	return []orb.Bound{
		{Min: orb.Point{b.NorthWest.Lon(), b.SouthEast.Lat()}, Max: orb.Point{180, b.NorthWest.Lat()}},
		{Min: orb.Point{-180, b.SouthEast.Lat()}, Max: orb.Point{b.SouthEast.Lon(), b.NorthWest.Lat()}},
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p orb.Point) bool {
	for _, bound := range b.Bounds() {
		if bound.Contains(p) {
			return true
		}
	}
	return false
}

// CellRanges returns the cell ranges covering the box at scale s.
func (b BoundingBox) CellRanges(s Scale) ([]CellRange, error) {
	return CellRangesForBoundingBox(b.NorthWest, b.SouthEast, s)
}

func (b BoundingBox) cellRange(nw, se orb.Point, s Scale) (CellRange, error) {
	start, err := CellFor(nw, s)
	if err != nil {
		return CellRange{}, err
	}
	end, err := CellFor(se, s)
	if err != nil {
		return CellRange{}, err
	}
	return CellRange{Start: start, End: end}, nil
}

// normalize returns lon wrapped into [-180, 180] and lat clamped to [-90, 90].
func normalize(p orb.Point) (lon, lat float64, err error) {
	lon, lat = p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return 0, 0, fmt.Errorf("%w: (%v, %v)", ErrInvalidPoint, lon, lat)
	}
	if lon > 180 || lon < -180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return lon, math.Max(-90, math.Min(90, lat)), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
