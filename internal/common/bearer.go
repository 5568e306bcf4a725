package common

import "strings"

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively. It reports
// false when the header is absent, uses another scheme, or carries no token.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// BearerHeader formats token as an Authorization header value.
func BearerHeader(token string) string {
	return BearerScheme + " " + token
}
