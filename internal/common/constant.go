package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme expected in front of the token.
	BearerScheme = "Bearer"
)
