// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/validation"
)

// LoadAreaSeed reads a JSON array of area metadata from path and validates
// every entry. Parents must appear in the file before their children.
func LoadAreaSeed(path string) ([]models.AreaMetadata, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read area seed: %w", err)
	}

	var areas []models.AreaMetadata
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("parse area seed %s: %w", path, err)
	}

	seen := make(map[string]bool, len(areas))
	for i := range areas {
		if verr := validation.ValidateStruct(&areas[i]); verr != nil {
			return nil, fmt.Errorf("area seed entry %d: %w", i, verr)
		}
		if areas[i].Parent != "" && !seen[areas[i].Parent] {
			return nil, fmt.Errorf("area seed entry %d: parent %s of %s is not listed before it",
				i, areas[i].Parent, areas[i].Code)
		}
		seen[areas[i].Code] = true
	}
	return areas, nil
}
