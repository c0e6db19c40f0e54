// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides read caching for listings, results, and
verification responses.

The Cache interface is deliberately small (Get, SetWithTTL,
DeleteByPattern) and the in-memory implementation covers a single
server process:

	c := cache.NewMemory()
	c.SetWithTTL(cache.ResultsKey("election", id), body, time.Minute)
	c.DeleteByPattern(cache.VotesPrefix("election", id))

Keys are built by the helper functions so every handler invalidates the
same names a cast or tamper finding makes stale.
*/
package cache
