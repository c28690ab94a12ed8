// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreOperation(t *testing.T) {
	before := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("update", "session", "boom"))

	RecordStoreOperation("update", "session", time.Millisecond, nil)
	RecordStoreOperation("update", "session", time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("update", "session", "boom"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}

func TestErrorTypeTruncation(t *testing.T) {
	t.Parallel()

	long := errors.New(strings.Repeat("x", 120))
	if got := errorType(long); len(got) != 50 {
		t.Errorf("errorType length = %d, want 50", len(got))
	}
	if got := errorType(errors.New("short")); got != "short" {
		t.Errorf("errorType = %q, want short", got)
	}
}

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(MutationOutcomes.WithLabelValues("trashpoint", "exhausted"))

	RecordMutation("trashpoint", "exhausted", 3)

	if got := testutil.ToFloat64(MutationOutcomes.WithLabelValues("trashpoint", "exhausted")) - before; got != 1 {
		t.Errorf("exhausted delta = %v, want 1", got)
	}
}

func TestRecordSpatialQuery(t *testing.T) {
	beforeQ := testutil.ToFloat64(SpatialQueries.WithLabelValues("overview", "12"))
	beforeO := testutil.ToFloat64(SpatialOverSelectedRows.WithLabelValues("overview"))

	RecordSpatialQuery("overview", 12, 0)
	RecordSpatialQuery("overview", 12, 5)

	if got := testutil.ToFloat64(SpatialQueries.WithLabelValues("overview", "12")) - beforeQ; got != 2 {
		t.Errorf("query delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(SpatialOverSelectedRows.WithLabelValues("overview")) - beforeO; got != 5 {
		t.Errorf("over-selected delta = %v, want 5", got)
	}
}

func TestScaleLabel(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "0", 7: "7", 15: "15", -1: "invalid"}
	for in, want := range tests {
		if got := scaleLabel(in); got != want {
			t.Errorf("scaleLabel(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	before := testutil.ToFloat64(SessionsSwept)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordSessionSweep(1)
			RecordSessionTouch("touched")
			RecordRevisionConflict("session")
			RecordViewQuery("grid4", true, 3, time.Microsecond)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(SessionsSwept) - before; got != 20 {
		t.Errorf("swept delta = %v, want 20", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := OverviewCacheLookups.WithLabelValues("clusters", "hit")
	misses := OverviewCacheLookups.WithLabelValues("clusters", "miss")
	beforeHits, beforeMisses := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("clusters", false, 1)
	RecordCacheLookup("clusters", true, 4)

	if got := testutil.ToFloat64(hits) - beforeHits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - beforeMisses; got != 1 {
		t.Errorf("miss delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(OverviewCacheEntries); got != 4 {
		t.Errorf("entries = %v, want 4", got)
	}
}
