// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

func TestSessionIDForAccount(t *testing.T) {
	t.Parallel()

	a := SessionIDForAccount("acc-1")
	if a != SessionIDForAccount("acc-1") {
		t.Error("session id must be deterministic")
	}
	if a == SessionIDForAccount("acc-2") {
		t.Error("different accounts must get different session ids")
	}
	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("session id %q is not a uuid: %v", a, err)
	}
	if id.Version() != 5 {
		t.Errorf("uuid version = %d, want 5", id.Version())
	}
}

func TestSession_Expired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future", now.Add(time.Hour), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		s := Session{ExpiresAt: tt.expiresAt}
		if got := s.Expired(now); got != tt.want {
			t.Errorf("%s: Expired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAncestorAreaCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"BG", ""},
		{"BG.1", "BG"},
		{"BG.1.4", "BG,BG.1"},
	}
	for _, tt := range tests {
		if got := strings.Join(AncestorAreaCodes(tt.code), ","); got != tt.want {
			t.Errorf("AncestorAreaCodes(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page      Page
		wantSkip  int
		wantLimit int
	}{
		{Page{}, 0, 10},
		{Page{Size: 20, Number: 1}, 0, 20},
		{Page{Size: 20, Number: 3}, 40, 20},
		{Page{Size: -1, Number: 2}, 10, 10},
	}
	for _, tt := range tests {
		if got := tt.page.Skip(); got != tt.wantSkip {
			t.Errorf("%+v.Skip() = %d, want %d", tt.page, got, tt.wantSkip)
		}
		if got := tt.page.Limit(); got != tt.wantLimit {
			t.Errorf("%+v.Limit() = %d, want %d", tt.page, got, tt.wantLimit)
		}
	}
}

func TestLocation_Point(t *testing.T) {
	t.Parallel()

	loc := Location{Latitude: 42.7, Longitude: 23.3}
	p := loc.Point()
	if p != (orb.Point{23.3, 42.7}) {
		t.Errorf("Point() = %v, want lon first", p)
	}
	if LocationFromPoint(p) != loc {
		t.Errorf("LocationFromPoint() = %v", LocationFromPoint(p))
	}
}

func TestAccount_NamePieces(t *testing.T) {
	t.Parallel()

	a := Account{Name: "  Ana  Maria Popescu "}
	if got := strings.Join(a.NamePieces(), "|"); got != "ana|maria|popescu" {
		t.Errorf("NamePieces() = %q", got)
	}
}

func TestPointSummary_StoredShape(t *testing.T) {
	t.Parallel()

	var p PointSummary
	raw := `{"id":"tp","location":{"latitude":1.5,"longitude":2.5},"status":"regular","areas":["BG"]}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != "tp" || p.Location.Longitude != 2.5 || p.Status != StatusRegular || len(p.Areas) != 1 {
		t.Errorf("decoded = %+v", p)
	}
}
