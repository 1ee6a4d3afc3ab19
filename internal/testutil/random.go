package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// RandomEmail returns a unique email address with the given local-part prefix.
func RandomEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@test.example.com", prefix, randomHex(6))
}

// RandomName returns a unique name with the given prefix, usable for
// franchises, stores and users.
func RandomName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, randomHex(6))
}
