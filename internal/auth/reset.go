package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const resetTokenBytes = 32

// NewResetToken mints a password-reset token. The cleartext value is
// returned exactly once for out-of-band delivery; only the digest and the
// absolute expiry are meant to be stored, so a store compromise does not
// hand out a usable reset capability.
func (s *TokenService) NewResetToken() (cleartext, digest string, expires time.Time, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}
	cleartext = hex.EncodeToString(buf)
	digest = HashResetToken(cleartext)
	expires = time.Now().Add(s.resetTTL)
	return cleartext, digest, expires, nil
}

// HashResetToken derives the storage digest of a cleartext reset token.
// Redemption hashes the presented token and looks the digest up.
func HashResetToken(cleartext string) string {
	sum := sha256.Sum256([]byte(cleartext))
	return hex.EncodeToString(sum[:])
}
