// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// View keys are composite tuples collated the way document-store views
// collate them: null < false < true < numbers < strings < arrays, arrays
// element by element with a shorter prefix first. High sorts after every
// other key and is only meaningful as a query bound.
//
// The byte encoding below preserves that order under bytes.Compare, so a
// badger iterator over encoded keys walks them in collation order. It is also
// prefix-free, which lets the document id be appended to form unique index
// entry keys without disturbing the order between different view keys.

const (
	tagEnd    byte = 0x00
	tagNull   byte = 0x01
	tagFalse  byte = 0x02
	tagTrue   byte = 0x03
	tagNumber byte = 0x04
	tagString byte = 0x05
	tagArray  byte = 0x06
	tagHigh   byte = 0xFE

	escapeByte byte = 0xFF
)

type highKey struct{}

// High sorts after every other key. Use it as the last element of an end key
// to select every key sharing a prefix, e.g. Key{datasetID, High}.
var High = highKey{}

// Key is a convenience alias for composite keys.
type Key = []any

// EncodeKey encodes a view key into its order-preserving byte form.
// Supported element types: nil, bool, signed and unsigned integers, floats,
// strings, High, and slices or arrays of supported elements.
func EncodeKey(key any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, key); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteByte(tagNull)
	case highKey:
		buf.WriteByte(tagHigh)
	case bool:
		if x {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case string:
		encodeString(buf, x)
	case int:
		encodeNumber(buf, float64(x))
	case int32:
		encodeNumber(buf, float64(x))
	case int64:
		encodeNumber(buf, float64(x))
	case uint32:
		encodeNumber(buf, float64(x))
	case uint64:
		encodeNumber(buf, float64(x))
	case float32:
		return encodeFloat(buf, float64(x))
	case float64:
		return encodeFloat(buf, x)
	case []any:
		buf.WriteByte(tagArray)
		for _, e := range x {
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(tagEnd)
	default:
		return encodeReflect(buf, v)
	}
	return nil
}

func encodeReflect(buf *bytes.Buffer, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		buf.WriteByte(tagArray)
		for i := 0; i < rv.Len(); i++ {
			if err := encodeValue(buf, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteByte(tagEnd)
		return nil
	case reflect.String:
		encodeString(buf, rv.String())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		encodeNumber(buf, float64(rv.Int()))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		encodeNumber(buf, float64(rv.Uint()))
		return nil
	default:
		return fmt.Errorf("%w: unsupported key element %T", ErrInvalidKey, v)
	}
}

func encodeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite number %v", ErrInvalidKey, f)
	}
	encodeNumber(buf, f)
	return nil
}

// encodeNumber writes an IEEE-754 double so that byte order equals numeric
// order: positive values get the sign bit set, negative values are inverted.
func encodeNumber(buf *bytes.Buffer, f float64) {
	if f == 0 {
		f = 0 // fold -0 into +0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var b [9]byte
	b[0] = tagNumber
	binary.BigEndian.PutUint64(b[1:], bits)
	buf.Write(b[:])
}

// encodeString escapes 0x00 as 0x00 0xFF and terminates with 0x00.
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte(tagString)
	for i := 0; i < len(s); i++ {
		c := s[i]
		buf.WriteByte(c)
		if c == 0x00 {
			buf.WriteByte(escapeByte)
		}
	}
	buf.WriteByte(tagEnd)
}

// CompareKeys orders two keys by view collation.
func CompareKeys(a, b any) (int, error) {
	ea, err := EncodeKey(a)
	if err != nil {
		return 0, err
	}
	eb, err := EncodeKey(b)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(ea, eb), nil
}

// groupKey truncates a key to its first level elements. Scalar keys and
// level <= 0 return the key unchanged.
func groupKey(key any, level int) any {
	parts, ok := key.([]any)
	if !ok || level <= 0 || level >= len(parts) {
		return key
	}
	return parts[:level]
}

// Index entry keys: "v/<view>/" + encoded key + doc id + uint16 length of id.
// The trailing length lets the encoded key be sliced back out.

func viewPrefix(view string) []byte {
	return []byte("v/" + view + "/")
}

func indexEntryKey(view string, encKey []byte, docID string) []byte {
	p := viewPrefix(view)
	out := make([]byte, 0, len(p)+len(encKey)+len(docID)+2)
	out = append(out, p...)
	out = append(out, encKey...)
	out = append(out, docID...)
	return binary.BigEndian.AppendUint16(out, uint16(len(docID)))
}

// splitIndexEntryKey returns the encoded view key and doc id of an index entry.
func splitIndexEntryKey(prefix, k []byte) (encKey []byte, docID string, err error) {
	if len(k) < len(prefix)+2 {
		return nil, "", fmt.Errorf("%w: truncated index entry", ErrCorruptIndex)
	}
	idLen := int(binary.BigEndian.Uint16(k[len(k)-2:]))
	end := len(k) - 2 - idLen
	if end < len(prefix) {
		return nil, "", fmt.Errorf("%w: bad id length", ErrCorruptIndex)
	}
	return k[len(prefix):end], string(k[end : len(k)-2]), nil
}

func docPrefix(kind string) []byte {
	return []byte("d/" + kind + "/")
}

func docKey(kind, id string) []byte {
	return []byte("d/" + kind + "/" + id)
}
