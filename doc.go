// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollara API server.

Pollara is a ballot service that records every vote on a per-subject
hash-linked ledger, so any voter can later verify that their ballot was
stored untampered and auditors can verify whole chains.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... TOKEN_SALT=... go run main.go

Or with flags:

	go run main.go -p 3641 -d "postgres://..." -token-salt "..."

A .env file in the working directory is loaded automatically.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - TOKEN_SALT (-token-salt): Secret for vote token and IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3641)
  - TOKEN_TTL (-token-ttl): Vote token lifetime (default: 5m)
  - CACHE_TTL (-cache-ttl): Read cache lifetime (default: 1m)
  - SMTP_HOST, SMTP_USER, SMTP_PASS, MAIL_ADDRESS: email receipts
    (disabled when unset)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (tokens, casting, verification, listings)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - eligibility: Admission checks for casting
  - token: One-time vote tokens
  - ledger: Hash-linked ballot chains
  - tally: Aggregated result counters
  - canonical: Deterministic JSON encoding for hashing
  - cache: Read caching for listings and verification
  - mail, notify: Ballot receipts
  - auth: Secret generation and hashing
  - db: Schema creation
  - cliparse: Configuration parsing

A background cron job prunes expired vote tokens every five minutes.

See package documentation for each component.
*/
package main
