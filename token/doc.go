// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token manages one-time vote tokens.

# Lifecycle

A voter requests a token before casting. Issue generates a random
secret, stores only its keyed hash, and returns the plaintext exactly
once:

	svc := token.NewService(db, salt, token.DefaultTTL)
	secret, expiresAt, err := svc.Issue(userID)

Reissuing replaces the previous token. Each user holds at most one
live token.

# Verification and Consumption

Verify checks a presented secret without spending it; Consume verifies
and deletes in one step:

	err := svc.Verify(userID, secret)   // admission check
	err = svc.Consume(userID, secret)   // after the ballot is recorded

A failed match never deletes the stored token, so a voter who mistyped
or lost a race can retry with the correct secret until the TTL runs
out. Expired tokens fail with ErrTokenExpired and are lazily removed;
PruneExpired sweeps the rest from a background job.
*/
package token
