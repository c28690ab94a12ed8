// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeKey_CollationOrder(t *testing.T) {
	t.Parallel()

	// Each key must sort strictly before the next one.
	ordered := []any{
		nil,
		false,
		true,
		-1e9,
		-1.5,
		0,
		0.25,
		1,
		2,
		100,
		"",
		"a",
		"a\x00",
		"a\x00b",
		"ab",
		"b",
		Key{},
		Key{nil},
		Key{0},
		Key{0, 0},
		Key{0, "a"},
		Key{1},
		Key{1, Key{2, 3}},
		Key{1, Key{2, 4}},
		Key{1, Key{3}},
		Key{"a"},
		High,
	}

	var prev []byte
	for i, k := range ordered {
		enc, err := EncodeKey(k)
		if err != nil {
			t.Fatalf("EncodeKey(%#v) error = %v", k, err)
		}
		if i > 0 && bytes.Compare(prev, enc) >= 0 {
			t.Errorf("key %d (%#v) does not sort after key %d (%#v)", i, k, i-1, ordered[i-1])
		}
		prev = enc
	}
}

func TestEncodeKey_NumericTypesAgree(t *testing.T) {
	t.Parallel()

	want, _ := EncodeKey(float64(42))
	for _, v := range []any{42, int32(42), int64(42), uint32(42), uint64(42), float32(42), uint8(42)} {
		got, err := EncodeKey(v)
		if err != nil {
			t.Fatalf("EncodeKey(%T) error = %v", v, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("EncodeKey(%T(42)) differs from float64(42)", v)
		}
	}

	negZero, _ := EncodeKey(math.Copysign(0, -1))
	zero, _ := EncodeKey(0)
	if !bytes.Equal(negZero, zero) {
		t.Error("-0 and +0 should encode identically")
	}
}

func TestEncodeKey_TypedSlices(t *testing.T) {
	t.Parallel()

	a, err := EncodeKey([]int{3, 7})
	if err != nil {
		t.Fatalf("EncodeKey([]int) error = %v", err)
	}
	b, _ := EncodeKey(Key{3, 7})
	if !bytes.Equal(a, b) {
		t.Error("[]int and []any with equal elements should encode identically")
	}
}

func TestEncodeKey_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  any
	}{
		{"NaN", math.NaN()},
		{"inf", math.Inf(1)},
		{"map", map[string]int{"a": 1}},
		{"nested struct", Key{1, struct{}{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := EncodeKey(tt.key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("EncodeKey() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestCompareKeys(t *testing.T) {
	t.Parallel()

	c, err := CompareKeys(Key{"ds", Key{1, 2}}, Key{"ds", High})
	if err != nil {
		t.Fatal(err)
	}
	if c >= 0 {
		t.Error("High should bound every key sharing the prefix")
	}
	c, _ = CompareKeys(Key{"ds"}, Key{"ds"})
	if c != 0 {
		t.Errorf("equal keys compare = %d", c)
	}
}

func TestGroupKey(t *testing.T) {
	t.Parallel()

	key := []any{"a", "b", "c"}
	if got := groupKey(key, 2).([]any); len(got) != 2 || got[1] != "b" {
		t.Errorf("groupKey(level 2) = %v", got)
	}
	if got := groupKey(key, 5).([]any); len(got) != 3 {
		t.Errorf("groupKey(level > len) = %v", got)
	}
	if got := groupKey("scalar", 1); got != "scalar" {
		t.Errorf("groupKey(scalar) = %v", got)
	}
}

func TestIndexEntryKey_RoundTrip(t *testing.T) {
	t.Parallel()

	enc, _ := EncodeKey(Key{"dataset", Key{12, 7}})
	k := indexEntryKey("grid3", enc, "doc-1")
	gotKey, gotID, err := splitIndexEntryKey(viewPrefix("grid3"), k)
	if err != nil {
		t.Fatalf("splitIndexEntryKey() error = %v", err)
	}
	if !bytes.Equal(gotKey, enc) || gotID != "doc-1" {
		t.Errorf("split = (%x, %q), want (%x, doc-1)", gotKey, gotID, enc)
	}

	if _, _, err := splitIndexEntryKey(viewPrefix("grid3"), []byte("v/grid3/")); !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("truncated entry error = %v, want ErrCorruptIndex", err)
	}
}

func TestIndexEntryKey_OrdersByKeyThenID(t *testing.T) {
	t.Parallel()

	k1, _ := EncodeKey(Key{"a", 1})
	k2, _ := EncodeKey(Key{"a", 2})

	// A long id on the smaller key must still sort before the larger key.
	e1 := indexEntryKey("v", k1, "zzzzzzzzzzzzzzzz")
	e2 := indexEntryKey("v", k2, "a")
	if bytes.Compare(e1, e2) >= 0 {
		t.Error("index entries should sort by view key before doc id")
	}

	e3 := indexEntryKey("v", k1, "a")
	if bytes.Compare(e3, e1) >= 0 {
		t.Error("index entries with equal keys should sort by doc id")
	}
}
