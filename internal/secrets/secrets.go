// Package secrets keeps credential material out of logs and catches
// obviously weak operator-supplied tokens at startup.
package secrets

import (
	"fmt"
	"net/url"
)

// MinTokenLen is the shortest admin token accepted without complaint.
const MinTokenLen = 16

// Mask returns a loggable form of a secret: the first 4 characters
// followed by "..." when the secret is longer than 8 characters,
// otherwise "***" so short secrets reveal nothing.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..."
}

// MaskURL masks credentials embedded in a URL, such as database
// connection strings or Sentry DSNs. A password component is replaced
// with "***"; a bare username (the DSN form) is masked entirely, since
// there the username is the secret.
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	} else {
		u.User = url.User("***")
	}
	return u.String()
}

// ValidateToken checks an operator-supplied bearer token for obvious
// weaknesses. An empty token passes; emptiness disables the admin API
// rather than weakening it.
func ValidateToken(token string) error {
	if token == "" {
		return nil
	}
	if len(token) < MinTokenLen {
		return fmt.Errorf("token is %d characters, need at least %d", len(token), MinTokenLen)
	}
	return nil
}
