package anki

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// StableID derives a deterministic 32-bit identifier from a seed
// string. Model and deck IDs must survive rebuilds so re-importing an
// updated package updates the existing notes instead of duplicating
// them.
func StableID(seed string) int64 {
	sum := sha256.Sum256([]byte(seed))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

// noteGUID identifies a note across imports. Derived from the deck and
// the first field so regenerated images do not change note identity.
func noteGUID(deckSeed, firstField string) string {
	sum := sha256.Sum256([]byte(deckSeed + "\x1f" + firstField))
	return hex.EncodeToString(sum[:])[:16]
}

// fieldChecksum is the sort-field checksum stored with each note: the
// first 8 hex digits of the SHA1 of the stripped first field.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(stripHTML(field)))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

// stripHTML removes tags the way the checksum expects, keeping text
// content only.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
