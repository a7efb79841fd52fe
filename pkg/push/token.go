package push

import "encoding/hex"

// CanonicalToken renders a device token as lowercase hex.
func CanonicalToken(token []byte) string {
	return hex.EncodeToString(token)
}
