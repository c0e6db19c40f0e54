// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSecretMismatch = errors.New("secret does not match stored hash")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateVoteSecret creates the plaintext secret for a vote token.
// This is the only place the plaintext exists; callers must hand it to the
// voter and persist only the hash.
func GenerateVoteSecret() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate vote secret: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashSecret creates the one-way hash of a vote secret that is stored in
// place of the plaintext. The hash is keyed per user so a token issued for
// user A can never be consumed under user B's key, even with an identical
// secret.
func HashSecret(userID, secret, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	h.Write([]byte(":"))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySecret checks a candidate secret against a stored hash in constant
// time.
func VerifySecret(userID, candidate, salt, storedHash string) error {
	expected := HashSecret(userID, candidate, salt)
	if !hmac.Equal([]byte(expected), []byte(storedHash)) {
		return ErrSecretMismatch
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
