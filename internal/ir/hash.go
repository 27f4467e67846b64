package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old digests.
const (
	DomainState    = "mockrel/state/v1"
	DomainResolved = "mockrel/resolved/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash fingerprints a normalized state. Two states hash equal exactly
// when their canonical JSON is byte-identical, so a rejected action can be
// checked to leave state untouched.
func StateHash(s State) (string, error) {
	if s == nil {
		s = State{}
	}
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// ResolvedHash fingerprints a resolved object graph (or list of graphs).
func ResolvedHash(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ResolvedHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResolved, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when the state is known to be canonical.
func MustStateHash(s State) string {
	h, err := StateHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
