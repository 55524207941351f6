package artifact

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the deterministic cache and deduplication key for an
// artifact.  Two requests with equal (type, canonical value) always produce
// equal fingerprints; the caller is responsible for upstream normalisation.
// Pure, total, no failure mode.
func Fingerprint(t Type, canonicalValue string) string {
	h := sha256.New()
	h.Write([]byte(t))
	h.Write([]byte{':'})
	h.Write([]byte(canonicalValue))
	return hex.EncodeToString(h.Sum(nil))
}
