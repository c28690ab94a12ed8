// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared by every
// caller; it caches struct metadata and is safe for concurrent use.
//
// # Field names
//
// Errors name a field by its `query` tag, then its `json` tag, then its Go
// name, so a client sees the parameter it actually sent:
//
//	type BoundingBoxRequest struct {
//	    NWLat float64 `query:"nw_lat" validate:"latitude"`
//	}
//
// fails with "nw_lat must be a valid latitude (-90 to 90)".
//
// # Custom validators
//
//   - areacode: a dotted area code such as "BG" or "BG.22.3". Used by the
//     trashpoint create payload and the area seed list.
//
// # Errors
//
// ValidateStruct returns a *RequestValidationError. ToAPIError turns it into
// the VALIDATION_ERROR response shape: one error yields its message and a
// field/tag/value detail map, several errors are joined and listed under
// "fields".
package validation
