package tokenstore

import (
	"encoding/json"
	"time"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
)

// Record is the persisted session. It is either absent or fully populated.
type Record struct {
	AccessToken  string `json:"accessToken" bson:"accessToken"`
	RefreshToken string `json:"refreshToken" bson:"refreshToken"`
	// Expiry is the instant, in Unix milliseconds, after which AccessToken is
	// no longer valid.
	Expiry int64 `json:"expiry" bson:"expiry"`
}

// NewRecord builds a record expiring at exp.
func NewRecord(accessToken, refreshToken string, exp time.Time) Record {
	return Record{AccessToken: accessToken, RefreshToken: refreshToken, Expiry: exp.UnixMilli()}
}

// Complete reports whether all three fields are present.
func (r Record) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.Expiry > 0
}

// Valid reports whether the access token is still usable at now.
func (r Record) Valid(now time.Time) bool {
	return r.Expiry > now.UnixMilli()
}

// ExpiresAt returns Expiry as a time.Time.
func (r Record) ExpiresAt() time.Time {
	return time.UnixMilli(r.Expiry)
}

func encodeRecord(r Record) ([]byte, error) {
	if !r.Complete() {
		return nil, autherrors.ErrIncompleteRecord
	}
	return json.Marshal(r)
}

// decodeRecord parses a stored value. Corrupt, foreign or partial data is
// reported as ErrStorageCorrupt; stores turn that into "absent".
func decodeRecord(b []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStorageCorrupt, "%v", err)
	}
	if !r.Complete() {
		return nil, autherrors.Wrapf(autherrors.ErrStorageCorrupt, "missing fields")
	}
	return &r, nil
}
