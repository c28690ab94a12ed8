// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package models

import (
	"github.com/paulmach/orb"
)

// Location is a WGS84 coordinate as stored in documents.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Point converts to an orb.Point (lon, lat).
func (l Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// LocationFromPoint converts an orb.Point (lon, lat).
func LocationFromPoint(p orb.Point) Location {
	return Location{Latitude: p.Lat(), Longitude: p.Lon()}
}

// GridCoordinates is a grid cell key as stored in view keys: [col, row].
type GridCoordinates [2]int

// PointSummary is the value every grid index row carries for one trashpoint.
type PointSummary struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
	Status   string   `json:"status"`
	Areas    []string `json:"areas,omitempty"`

	// Coordinates is the grid cell the row was read from. It is not stored.
	Coordinates GridCoordinates `json:"coordinates"`
}

// Cluster aggregates every trashpoint sharing a grid cell.
type Cluster struct {
	Coordinates GridCoordinates `json:"coordinates"`
	Count       int             `json:"count"`
	Center      Location        `json:"center"`
}

// Overview is a map overview of one bounding box: cells holding several
// trashpoints as clusters, cells holding exactly one as points.
type Overview struct {
	Scale    int            `json:"scale"`
	Clusters []Cluster      `json:"clusters"`
	Points   []PointSummary `json:"points"`
}

// RegionCount is the number of trashpoints in an area, optionally split by
// status.
type RegionCount struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus,omitempty"`
}
