// Package claims reads the expiry of an access token without verifying it.
//
// The access token is a three-part, dot-separated JWT whose middle segment is a
// base64url encoded JSON object. Anything that does not match that shape
// decodes to nil; callers apply the fallback expiry instead.
package claims

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
)

// FallbackTTL is the validity assumed for a token whose expiry is unknown.
const FallbackTTL = 5 * time.Minute

var (
	log = logger.Named("claims")
	// padding is tolerated so tokens minted by lenient issuers still decode
	parser = jwt.NewParser(jwt.WithPaddingAllowed())
)

// Decode returns the payload claims of accessToken, or nil when the token is
// malformed (wrong segment count, bad encoding, invalid or non-object JSON).
func Decode(accessToken string) jwt.MapClaims {
	claims, err := decode(accessToken)
	if err != nil {
		log.Debugf("%v", err)
		return nil
	}
	return claims
}

func decode(accessToken string) (jwt.MapClaims, error) {
	parts := strings.Split(accessToken, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "payload encoding: %v", err)
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "payload json: %v", err)
	}
	if claims == nil {
		// literal `null` payload
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "payload is not an object")
	}
	return claims, nil
}

// ExpiresAt returns the instant carried by the exp claim (Unix seconds).
// ok is false when the token is malformed or has no usable exp.
func ExpiresAt(accessToken string) (exp time.Time, ok bool) {
	claims := Decode(accessToken)
	if claims == nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// Expiry returns the expiry to persist for accessToken: its exp claim, or
// now+FallbackTTL when that cannot be determined.
func Expiry(accessToken string, now time.Time) time.Time {
	if exp, ok := ExpiresAt(accessToken); ok {
		return exp
	}
	log.Debugf("no usable exp claim, assuming %s validity", FallbackTTL)
	return now.Add(FallbackTTL)
}
