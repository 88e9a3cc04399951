// Package pipeline orchestrates the scrape-extract-enrich flow for robotics
// company intelligence.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// idPrefix marks document identifiers in the store.
const idPrefix = "doc"

// NormalizeURL canonicalizes a URL for identity purposes: the fragment is
// dropped and a trailing slash on the path is removed, so cosmetic variants
// of the same address map to the same document.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

// NewTargetID derives a stable document identifier from a URL. The same URL
// always yields the same identifier across runs, so repeated scrapes update
// one row instead of accumulating duplicates.
func NewTargetID(rawURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return idPrefix + "_" + hex.EncodeToString(sum[:])[:12]
}

// NewRunID returns a fresh identifier for one pipeline invocation. Run IDs
// label logs and exports; they are never used as storage keys.
func NewRunID() string {
	return "run_" + uuid.NewString()
}
