// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides secret generation and hashing utilities.

# Vote Secrets

Vote token secrets are random 24-byte (192-bit) values:

	secret, err := auth.GenerateVoteSecret()

Secrets are URL-safe base64 encoded without padding. Only their keyed
hash is ever stored:

	hash := auth.HashSecret(userID, secret, salt)
	err := auth.VerifySecret(userID, candidate, salt, storedHash)

The HMAC-SHA256 hash is keyed per user, so the same secret hashes
differently for different users. VerifySecret compares in constant
time and returns ErrSecretMismatch on failure.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving duplicate detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
