// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Patch is a set of top-level field assignments. A nil value removes the field.
type Patch map[string]any

// RawDocument is a stored document: identity, revision token and a flat
// object of fields. Caller fields and system fields share the same object.
type RawDocument struct {
	ID     string                     `json:"_id"`
	Rev    string                     `json:"_rev"`
	Kind   string                     `json:"kind"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// Decode unmarshals the document fields into v.
func (d *RawDocument) Decode(v any) error {
	data, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode fields of %s/%s: %w", d.Kind, d.ID, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", d.Kind, d.ID, err)
	}
	return nil
}

// Field unmarshals a single field into v. It reports false when the field is absent.
func (d *RawDocument) Field(name string, v any) (bool, error) {
	raw, ok := d.Fields[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode field %s of %s/%s: %w", name, d.Kind, d.ID, err)
	}
	return true, nil
}

// String returns a string field or "" when absent or not a string.
func (d *RawDocument) String(name string) string {
	var s string
	if ok, err := d.Field(name, &s); !ok || err != nil {
		return ""
	}
	return s
}

// Generation is the numeric prefix of the revision token.
func (d *RawDocument) Generation() int {
	return revisionGeneration(d.Rev)
}

func (d *RawDocument) clone() *RawDocument {
	fields := make(map[string]json.RawMessage, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return &RawDocument{ID: d.ID, Rev: d.Rev, Kind: d.Kind, Fields: fields}
}

// apply merges p into the document fields.
func (d *RawDocument) apply(p Patch) error {
	for k, v := range p {
		if v == nil {
			delete(d.Fields, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
		d.Fields[k] = raw
	}
	return nil
}

// Revision tokens are "<generation>-<8 hex chars>". The generation grows by
// one on every committed write; the suffix tells apart writes that raced to
// the same generation on different replicas of a snapshot.

func firstRevision() string {
	return "1-" + revisionSuffix()
}

func nextRevision(rev string) string {
	return strconv.Itoa(revisionGeneration(rev)+1) + "-" + revisionSuffix()
}

func revisionGeneration(rev string) int {
	head, _, _ := strings.Cut(rev, "-")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return n
}

func revisionSuffix() string {
	return uuid.NewString()[:8]
}

// NewID returns a random document id.
func NewID() string {
	return uuid.NewString()
}
