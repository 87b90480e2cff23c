package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Source supplies the provisioned key set. A static config-backed
// source is provided here; a secret-store source can replace it.
type Source interface {
	Load(ctx context.Context) ([]Key, error)
}

// StaticSource serves keys from configuration.
type StaticSource struct {
	keys []Key
}

// NewStaticSource hashes and stores standard and admin keys.
func NewStaticSource(standard, admin []string) *StaticSource {
	keys := make([]Key, 0, len(standard)+len(admin))
	for _, k := range standard {
		keys = append(keys, Key{Hash: HashKey(k)})
	}
	for _, k := range admin {
		keys = append(keys, Key{Hash: HashKey(k), Admin: true})
	}
	return &StaticSource{keys: keys}
}

func (s *StaticSource) Load(ctx context.Context) ([]Key, error) {
	return s.keys, nil
}

// Keyring resolves key hashes against a time-boxed cache of the source.
// The cache is process-local; key revocation propagates within the TTL.
type Keyring struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	byHash   map[string]Key
	loadedAt time.Time
}

// NewKeyring creates a keyring over the source. A nil clock uses time.Now.
func NewKeyring(source Source, ttl time.Duration, clock func() time.Time) *Keyring {
	if clock == nil {
		clock = time.Now
	}
	return &Keyring{
		source: source,
		ttl:    ttl,
		now:    clock,
	}
}

// Resolve authenticates a raw API key: hash lookup against the cached
// key set, then expiry check.
func (k *Keyring) Resolve(ctx context.Context, rawKey string) (*Principal, error) {
	if rawKey == "" {
		return nil, ErrMissingKey
	}

	key, err := k.lookup(ctx, HashKey(rawKey))
	if err != nil {
		return nil, err
	}

	if key.Expired(k.now()) {
		return nil, ErrExpiredKey
	}

	return &Principal{
		KeyHash: key.Hash,
		Admin:   key.Admin,
	}, nil
}

func (k *Keyring) lookup(ctx context.Context, hash string) (*Key, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.byHash == nil || k.now().Sub(k.loadedAt) >= k.ttl {
		keys, err := k.source.Load(ctx)
		if err != nil {
			if k.byHash == nil {
				return nil, fmt.Errorf("load keys: %w", err)
			}
			// serve the stale set, revocation waits for the next refresh
		} else {
			byHash := make(map[string]Key, len(keys))
			for _, key := range keys {
				byHash[key.Hash] = key
			}
			k.byHash = byHash
			k.loadedAt = k.now()
		}
	}

	key, ok := k.byHash[hash]
	if !ok {
		return nil, ErrInvalidKey
	}
	return &key, nil
}
