package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	c := defaults()
	err := parseEnv(c, map[string]string{
		"HTTP_ADDRESS":          ":1111",
		"DATABASE_DSN":          "postgres://env/db",
		"REDIS_URL":             "redis://env:6379",
		"JWT_SECRET":            "env-secret",
		"JWT_VALID_ISSUER":      "env-iss",
		"JWT_VALID_AUDIENCE":    "env-aud",
		"ACCESS_TOKEN_VALIDITY": "45m",
		"LOGIN_ATTEMPTS_LIMIT":  "4",
		"LOG_LEVEL":             "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, ":1111", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "postgres://env/db", c.DatabaseDSN)
	assert.Equal(t, "redis://env:6379", c.RedisURL)
	assert.Equal(t, "env-secret", c.JWT.Secret)
	assert.Equal(t, "env-iss", c.JWT.ValidIssuer)
	assert.Equal(t, "env-aud", c.JWT.ValidAudience)
	assert.Equal(t, 45*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 4, c.LoginAttemptsLimit)
	assert.Equal(t, time.Minute, c.LoginAttemptsWindow)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestParseEnv_BadValue(t *testing.T) {
	c := defaults()
	err := parseEnv(c, map[string]string{"LOGIN_ATTEMPTS_LIMIT": "many"})
	assert.ErrorContains(t, err, "parse environment")
}
