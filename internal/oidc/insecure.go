package oidc

import (
	"context"
	"encoding/json"

	"github.com/gogotex/gogotex/backend/auth-widget/internal/claims"
	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/middleware"
)

// decodedToken exposes claims read from a JWT payload without verification.
type decodedToken struct {
	claims map[string]interface{}
}

func (t *decodedToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// InsecureVerifier decodes the payload and does NOT validate signatures.
// Used when no issuer is configured or OIDC_INSECURE is set.
type InsecureVerifier struct{}

func NewInsecureVerifier() *InsecureVerifier { return &InsecureVerifier{} }

func (v *InsecureVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	mc := claims.Decode(raw)
	if mc == nil {
		return nil, autherrors.ErrMalformedToken
	}
	return &decodedToken{claims: mc}, nil
}
