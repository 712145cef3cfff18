// Package stringlist provides a string slice type for JSON fields that
// upstream producers emit either as a single string or as an array of strings.
package stringlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// List normalizes a JSON field that may be null, a string, or an array of
// strings. Parsing always yields a slice; serialization is compact: an empty
// list is written as null and a single element as a bare string.
//
// The round trip is intentionally asymmetric: a one-element array is read
// back as a bare string after marshalling.
type List []string

// ShapeError reports a JSON value that is neither null, a string, nor an array.
type ShapeError struct {
	// Kind is the JSON kind that was encountered, e.g. "number" or "object".
	Kind string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected JSON %s: expected string or array of strings", e.Kind)
}

// Of builds a List from the given values. It returns nil for no values.
func Of(values ...string) List {
	if len(values) == 0 {
		return nil
	}
	return List(values)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &ShapeError{Kind: "empty input"}
	}

	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return &ShapeError{Kind: "literal"}
		}
		*l = nil
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = List{s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(List, 0, len(raw))
		for _, elem := range raw {
			var s string
			// non-string elements (including null) are skipped rather than failing the field
			if err := json.Unmarshal(elem, &s); err != nil {
				continue
			}
			if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
				continue
			}
			out = append(out, s)
		}
		*l = out
		return nil
	case '{':
		return &ShapeError{Kind: "object"}
	case 't', 'f':
		return &ShapeError{Kind: "boolean"}
	default:
		return &ShapeError{Kind: "number"}
	}
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	switch len(l) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(l[0])
	default:
		return json.Marshal([]string(l))
	}
}

// IsEmpty reports whether the list has no elements.
func (l List) IsEmpty() bool {
	return len(l) == 0
}

// Compact returns the elements of l that are not blank, trimmed of
// surrounding space.
func (l List) Compact() List {
	var out List
	for _, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
