package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/matthieukhl/axoshard/internal/auth"
	"github.com/matthieukhl/axoshard/internal/config"
	"github.com/matthieukhl/axoshard/internal/database"
	"github.com/matthieukhl/axoshard/internal/store"
)

// openedStore pairs a store with the work needed to put it away: for the
// memory driver that includes writing the snapshot.
type openedStore struct {
	store.Store
	memory   *store.MemoryStore
	snapshot string

	mu    sync.Mutex
	saved uint64 // memory revision last written to snapshot
}

func openStore(cfg *config.Config) (*openedStore, error) {
	switch cfg.Store.Driver {
	case "mysql":
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &openedStore{Store: store.NewMySQLStore(db, store.UUIDGenerator{})}, nil
	case "memory":
		mem := store.NewMemoryStore()
		if cfg.Store.SnapshotPath != "" {
			if err := mem.LoadFile(cfg.Store.SnapshotPath); err != nil {
				return nil, err
			}
		}
		return &openedStore{Store: mem, memory: mem, snapshot: cfg.Store.SnapshotPath, saved: mem.Revision()}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// Close saves the memory snapshot, if configured, then releases the store.
func (s *openedStore) Close() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.Store.Close()
}

// flush writes the snapshot if the memory store changed since the last write.
func (s *openedStore) flush() error {
	if s.ephemeral() || s.memory == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.memory.Revision()
	if rev == s.saved {
		return nil
	}
	if err := s.memory.SaveFile(s.snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.saved = rev
	return nil
}

// flushEvery keeps the snapshot at most interval behind the store until ctx ends.
func (s *openedStore) flushEvery(ctx context.Context, interval time.Duration) {
	if s.ephemeral() || s.memory == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.flush(); err != nil {
					log.Printf("warning: %v", err)
				}
			}
		}
	}()
}

func (s *openedStore) ephemeral() bool {
	return s.memory != nil && s.snapshot == ""
}

func newAuthService(cfg *config.Config, users store.UserStore) *auth.Service {
	return auth.NewService(users, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
}

// newTokenIssuer falls back to a random per-process secret when none is
// configured; sessions then end when the process does.
func newTokenIssuer(cfg *config.AuthConfig) (*auth.TokenIssuer, error) {
	secret := config.ResolveSecret(cfg.JWTSecret, cfg.JWTSecretEnv)
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Printf("warning: %s is not set, using a random session secret", cfg.JWTSecretEnv)
	}
	return auth.NewTokenIssuer(secret, cfg.TokenTTL)
}
