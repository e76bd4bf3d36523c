package microsoft

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeIDToken builds an unsigned id token with the given claims payload.
func makeIDToken(t *testing.T, claims map[string]string) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return "header." + base64.RawURLEncoding.EncodeToString(payload) + ".signature"
}

func TestBuildAuthURL(t *testing.T) {
	raw := buildAuthURL("", "client-123", "https://app.example.com/callback", "acc-1")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, defaultAuthURL))
	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "query", q.Get("response_mode"))
	assert.Equal(t, "acc-1", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "offline_access")
	assert.Contains(t, q.Get("scope"), "Calendars.ReadWrite")
	assert.Contains(t, q.Get("scope"), "Mail.Send")
}

func TestParseIDTokenClaims(t *testing.T) {
	token := makeIDToken(t, map[string]string{
		"oid":                "object-id",
		"tid":                "tenant-id",
		"preferred_username": "user@example.com",
	})

	claims, err := parseIDTokenClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "object-id.tenant-id", claims.homeAccountID())
	assert.Equal(t, "user@example.com", claims.username())
}

func TestParseIDTokenClaims_EmailFallback(t *testing.T) {
	token := makeIDToken(t, map[string]string{
		"oid":   "object-id",
		"tid":   "tenant-id",
		"email": "mail@example.com",
	})

	claims, err := parseIDTokenClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "mail@example.com", claims.username())
}

func TestParseIDTokenClaims_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "two parts", token: "a.b"},
		{name: "bad base64", token: "a.!!!.c"},
		{name: "not json", token: "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIDTokenClaims(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestHomeAccountID_RequiresObjectID(t *testing.T) {
	claims := &idTokenClaims{TenantID: "tenant-id"}
	assert.Empty(t, claims.homeAccountID())
}
