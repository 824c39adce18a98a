// Package hashid provides the stable content hash the Data Model requires
// for Id equality/hashing (spec: "stable hash/equality over string value").
//
// The teacher hashes user passwords with golang.org/x/crypto/bcrypt
// (server/tunas/auth.go); there is nothing secret to hash here, so this
// package reaches for a different subpackage of the same module,
// blake2b, which is built for fast content-addressing rather than
// slow, salted password verification.
package hashid

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sum returns a stable, deterministic digest of s. ast.Id.Hash is built on
// it. (ReplaceNestedExprs does not use it: it matches identical nested
// Exprs by ast.ExprKey.)
func Sum(s string) string {
	h := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Equal reports whether two strings hash identically. It is provided so
// callers can express Id comparisons in terms of the same stable hash used
// for ordered-container keys instead of ad hoc ==, which matters once Ids
// are interned across multiple included grammar files.
func Equal(a, b string) bool {
	return Sum(a) == Sum(b)
}
