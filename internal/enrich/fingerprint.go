package enrich

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint hashes a product's source text so a re-run with unchanged
// content can be detected without comparing the text itself.
func Fingerprint(title, description string) string {
	sum := sha1.Sum([]byte(title + "|" + description))
	return hex.EncodeToString(sum[:])
}

// HasPersian reports whether the text contains characters in the Arabic
// script block (U+0600–U+06FF) used by Persian.
func HasPersian(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
