package validators

import (
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// GuestTokenMaxLen bounds the X-Guest-Token header.
const GuestTokenMaxLen = 128

// BearerToken extracts the token from an Authorization header value. A value without the
// Bearer scheme is taken as the token itself.
func BearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// GuestToken trims the X-Guest-Token header value. Tokens are cart identities, so an oversized
// or malformed value is rejected instead of being rewritten.
func GuestToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if len(token) > GuestTokenMaxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "guest token is too long").
			WithDetails(map[string]any{"field": "X-Guest-Token", "maxLength": GuestTokenMaxLen})
	}
	if strings.IndexFunc(token, unicode.IsControl) >= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "guest token contains invalid characters").
			WithDetails(map[string]any{"field": "X-Guest-Token"})
	}
	return token, nil
}
