// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package main

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var licenseHeader = []string{
	"// World Cleanup Day - Trashpoint Storage and Map Overview Clustering",
	"// Copyright 2026 The World Cleanup Day Authors",
	"// SPDX-License-Identifier: AGPL-3.0-or-later",
	"// https://github.com/kublaj/World-Cleanup-Day",
}

func TestSourceFilesCarryLicenseHeader(t *testing.T) {
	root := filepath.Join("..", "..")
	checked := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		checked++

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for i, want := range licenseHeader {
			if !sc.Scan() || sc.Text() != want {
				t.Errorf("%s: header line %d = %q, want %q", path, i+1, sc.Text(), want)
				break
			}
		}
		return sc.Err()
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if checked == 0 {
		t.Fatal("no Go files found")
	}
}
