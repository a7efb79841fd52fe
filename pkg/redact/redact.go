// Package redact keeps device tokens out of logs and activity records.
package redact

import (
	"encoding/hex"
	"strings"

	masker "github.com/goliatone/go-masker"
	"golang.org/x/crypto/blake2b"
)

const tokenMask = "preserveEnds(2,2)"

func init() {
	for _, field := range []string{"token", "push_token", "device_token"} {
		masker.Default.RegisterMaskField(field, tokenMask)
	}
}

// Token masks a hex push token for logging, keeping two characters at each end.
func Token(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(tokenMask, value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// Fingerprint returns a stable, non-reversible identifier for a raw token.
func Fingerprint(token []byte) string {
	if len(token) == 0 {
		return ""
	}
	sum := blake2b.Sum256(token)
	return hex.EncodeToString(sum[:16])
}
