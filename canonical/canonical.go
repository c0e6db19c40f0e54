// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Canonicalize returns the canonical encoding of a JSON document.
//
// The encoding is byte-exact and order-independent: object keys are sorted
// recursively, and array elements are encoded individually and then sorted
// bytewise, so two documents that differ only in field insertion order or
// element order produce identical output. Numbers are emitted exactly as
// they appear in the input.
func Canonicalize(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("failed to parse payload: %w", err)
	}

	return encode(v)
}

// CanonicalizeValue canonicalizes an in-memory value by round-tripping it
// through its JSON encoding.
func CanonicalizeValue(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return Canonicalize(raw)
}

func encode(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil

	case bool:
		if val {
			return "true", nil
		}
		return "false", nil

	case json.Number:
		return val.String(), nil

	case string:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil

	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			enc, err := encode(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, enc)
		}
		sort.Strings(parts)
		return "[" + strings.Join(parts, ",") + "]", nil

	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			enc, err := encode(val[k])
			if err != nil {
				return "", err
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return "", err
			}
			parts = append(parts, string(kb)+":"+enc)
		}
		return "{" + strings.Join(parts, ",") + "}", nil

	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
