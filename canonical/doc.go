// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package canonical produces a deterministic JSON encoding for hashing.

Two payloads that differ only in key order or array element order must
hash identically, so the encoder sorts object keys recursively and sorts
array elements by their canonical encodings:

	s, err := canonical.Canonicalize([]byte(`{"b":1,"a":[3,2]}`))
	// {"a":[2,3],"b":1}

Numbers pass through verbatim (no float round-trip), so "1e9" stays
"1e9". CanonicalizeValue accepts any Go value and canonicalizes its
JSON encoding.

The output feeds ledger record hashing and is never what gets stored;
the payload column keeps the ballot exactly as submitted.
*/
package canonical
