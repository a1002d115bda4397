package myschool

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UIDStrategy produces the stable identity of a normalized event. The
// contract is determinism: the same inputs always produce the same UID,
// so calendar clients update in place across runs instead of inserting
// duplicates. The algorithm itself is swappable.
type UIDStrategy interface {
	UID(itemID, start, end, location, name string) string
}

// HashUID derives the UID from a sha256 content hash of all five fields,
// truncated to 24 hex characters. This is the default.
type HashUID struct {
	// Prefix namespaces the UID, e.g. "myschool-".
	Prefix string
}

func (h HashUID) UID(itemID, start, end, location, name string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{itemID, start, end, location, name}, "||")))
	return h.Prefix + hex.EncodeToString(sum[:])[:24]
}

// ConcatUID joins the item id and session start verbatim. Simpler to eyeball
// in calendar clients, but leaks upstream ids into published files.
type ConcatUID struct{}

func (ConcatUID) UID(itemID, start, end, location, name string) string {
	return itemID + "-" + start
}
