package license

import (
	"crypto/rand"
	"fmt"
)

const humanKeyPrefix = "LFT"

// NewHumanKey returns a fresh key of the form LFT-XXXX-XXXX-XXXX-XXXX
// (upper-case hex). It is a cosmetic identifier with no cryptographic
// role; the store's unique index is the only collision backstop.
func NewHumanKey() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("human key: %w", err)
	}
	return fmt.Sprintf("%s-%02X%02X-%02X%02X-%02X%02X-%02X%02X",
		humanKeyPrefix, b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7]), nil
}
