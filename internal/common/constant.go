package common

// AuthorizationHeaderName is the HTTP header / gRPC metadata key that
// carries the bearer token on inbound requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization value.
const BearerScheme = "Bearer"
