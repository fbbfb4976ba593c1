package claims

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("claims-test-secret-32-bytes-xxxxx"))
	require.NoError(t, err)
	return tok
}

func TestDecode_WellFormedToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tok := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp})

	claims := Decode(tok)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims["sub"])

	got, ok := ExpiresAt(tok)
	require.True(t, ok)
	assert.Equal(t, exp, got.Unix())
}

func TestDecode_PaddedPayload(t *testing.T) {
	// 19 bytes of JSON encode to a segment ending in "=="
	payload := base64.URLEncoding.EncodeToString([]byte(`{"exp": 1700000000}`))
	require.True(t, len(payload) > 2 && payload[len(payload)-2:] == "==")
	got, ok := ExpiresAt("hdr." + payload + ".sig")
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), got.Unix())
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"one segment":    "opaque-token",
		"two segments":   "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":1}`)),
		"four segments":  "a.b.c.d",
		"empty payload":  "hdr..sig",
		"bad base64":     "hdr.!!!not-base64!!!.sig",
		"invalid json":   "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":`)) + ".sig",
		"array payload":  "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`)) + ".sig",
		"null payload":   "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`null`)) + ".sig",
		"number payload": "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`42`)) + ".sig",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Decode(tok))
			_, ok := ExpiresAt(tok)
			assert.False(t, ok)
		})
	}
}

func TestExpiry_UsesExpClaim(t *testing.T) {
	now := time.Now()
	exp := now.Add(3600 * time.Second).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})
	assert.Equal(t, exp.Unix(), Expiry(tok, now).Unix())
}

func TestExpiry_FallbackWhenMissingOrMalformed(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	noExp := signedToken(t, jwt.MapClaims{"sub": "user-1"})
	assert.Equal(t, now.Add(FallbackTTL), Expiry(noExp, now))

	stringExp := "hdr." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":"tomorrow"}`)) + ".sig"
	assert.Equal(t, now.Add(FallbackTTL), Expiry(stringExp, now))

	assert.Equal(t, now.Add(FallbackTTL), Expiry("not-a-jwt", now))
}
