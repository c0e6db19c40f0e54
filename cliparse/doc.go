// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3641)
  - DatabaseURL: PostgreSQL connection string (required)
  - TokenSalt: Secret for vote token and IP hashing (required)
  - TokenTTL: Vote token lifetime (default: 5m)
  - CacheTTL: Read cache lifetime (default: 1m)
  - SMTPHost, SMTPUser, SMTPPass, MailAddress, MailSkipVerify: email
    receipts, disabled when unset

# CLI Flags

	-p           Server port
	-d           Database URL
	-token-salt  Vote token salt
	-token-ttl   Token lifetime
	-cache-ttl   Cache lifetime
	-smtp-host, -smtp-user, -smtp-pass, -mail-address, -mail-skip-verify

# Environment Variables

Flags fall back to environment variables:

	PORT         → -p
	DATABASE_URL → -d
	TOKEN_SALT   → -token-salt
	TOKEN_TTL    → -token-ttl
	CACHE_TTL    → -cache-ttl
	SMTP_HOST, SMTP_USER, SMTP_PASS, MAIL_ADDRESS

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or TTLs are
not positive durations:

  - DATABASE_URL must be provided
  - TOKEN_SALT must be provided
*/
package cliparse
