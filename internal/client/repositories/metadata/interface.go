// Package metadata stores small client-local key/value records: the
// persisted session token and the material needed to seal it.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken       = "session.token"
	KeyTokenSealed = "session.token.sealed"
	KeySealSalt    = "session.seal.salt"
)

// Repository is a key/value store. Get reports found=false for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
}
