package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// SessionTTL matches the credential lifetime of the auth surface: tokens
// expire eight hours after login.
const SessionTTL = 8 * time.Hour

func newSessionToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
