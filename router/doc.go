// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Pollara API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, c, notifier)

# Endpoints

Health:

	GET /health

Tokens:

	POST /tokens - Issue a one-time vote token (X-Voter-ID)

Casting (requires X-Voter-ID and X-Vote-Token unless the form is
anonymous):

	POST /elections/{id}/votes - Cast an election ballot
	POST /forms/{id}/votes     - Cast a form ballot

Verification (public):

	GET /votes/{id}/verify           - Verify one ballot
	GET /elections/{id}/chain/verify - Audit an election's chain
	GET /forms/{id}/chain/verify     - Audit a form's chain

Listings and results (public):

	GET /elections/{id}/votes   - Redacted vote listing
	GET /forms/{id}/votes       - Redacted vote listing
	GET /elections/{id}/results - Tallied results
	GET /forms/{id}/results     - Tallied results

# Handler Initialization

The router creates handler instances with dependency injection. All
handlers receive the database connection and configuration; the cast,
verify, and listing handlers also share the cache.
*/
package router
