// Package ir provides the value and data model types shared by every layer
// of mock-rel.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Row values are the sealed IRValue family; NO float types (use int64
//     or decimal strings)
//   - Field kinds form a closed enum (Plain, Foreign, Reverse)
//   - State is an immutable value: writers copy what they touch and share
//     everything else
//   - Canonical JSON (RFC 8785) is the only serialization used for byte
//     comparisons and hashes
package ir
