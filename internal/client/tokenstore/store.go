// Package tokenstore persists the session token in the local metadata table.
//
// A token stored with secure=true is sealed with AES-GCM when the store was
// given a secret; the key is derived from that secret and a per-database salt
// that is created on first use.
package tokenstore

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/peermirror/internal/cryptox"
	"github.com/dmitrijs2005/peermirror/internal/dbx"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// TxDB is the database handle the store needs. *sql.DB implements it.
type TxDB interface {
	dbx.DBTX
	dbx.Beginner
}

type Store struct {
	db     TxDB
	secret []byte
	log    logging.Logger

	mu      sync.Mutex
	keySalt []byte
	key     []byte
}

type Option func(*Store)

// WithSecret enables sealing of tokens stored with secure=true.
func WithSecret(secret string) Option {
	return func(s *Store) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l.With("module", "tokenstore") }
}

func New(db TxDB, opts ...Option) *Store {
	s := &Store{db: db, log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the persisted token. ok is false when none is stored.
func (s *Store) Get(ctx context.Context) (token string, ok bool, err error) {
	repo := metadata.NewSQLiteRepository(s.db)

	sealed, found, err := repo.Get(ctx, metadata.KeyTokenSealed)
	if err != nil {
		return "", false, err
	}
	if found {
		if s.secret == nil {
			return "", false, fmt.Errorf("token is sealed but no secret is configured")
		}
		salt, _, err := repo.Get(ctx, metadata.KeySealSalt)
		if err != nil {
			return "", false, err
		}
		plain, err := cryptox.Open(sealed, s.deriveKey(salt))
		if err != nil {
			return "", false, fmt.Errorf("unseal token: %w", err)
		}
		return string(plain), len(plain) > 0, nil
	}

	plain, found, err := repo.Get(ctx, metadata.KeyToken)
	if err != nil || !found {
		return "", false, err
	}
	return string(plain), len(plain) > 0, nil
}

// Set stores token, replacing any previous one in either form.
func (s *Store) Set(ctx context.Context, token string, secure bool) error {
	seal := secure && s.secret != nil
	if secure && !seal {
		s.log.Debug(ctx, "no secret configured, storing token unsealed")
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if !seal {
			if err := repo.Set(ctx, metadata.KeyToken, []byte(token)); err != nil {
				return err
			}
			return repo.Delete(ctx, metadata.KeyTokenSealed)
		}

		salt, found, err := repo.Get(ctx, metadata.KeySealSalt)
		if err != nil {
			return err
		}
		if !found || len(salt) == 0 {
			if salt, err = cryptox.NewSalt(); err != nil {
				return err
			}
			if err := repo.Set(ctx, metadata.KeySealSalt, salt); err != nil {
				return err
			}
		}
		sealed, err := cryptox.Seal([]byte(token), s.deriveKey(salt))
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		if err := repo.Set(ctx, metadata.KeyTokenSealed, sealed); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyToken)
	})
}

// Clear removes the token in both forms. The salt is kept.
func (s *Store) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, metadata.KeyToken, metadata.KeyTokenSealed)
}

func (s *Store) deriveKey(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil && bytes.Equal(s.keySalt, salt) {
		return s.key
	}
	s.key = cryptox.DeriveKey(s.secret, salt)
	s.keySalt = bytes.Clone(salt)
	return s.key
}

var _ TxDB = (*sql.DB)(nil)
