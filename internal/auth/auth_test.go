package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashKey(t *testing.T) {
	hash := HashKey("test-key")
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(hash))
	}
	if hash != HashKey("test-key") {
		t.Error("hashing is not deterministic")
	}
	if hash == HashKey("other-key") {
		t.Error("distinct keys produced the same hash")
	}
}

func TestKeyringResolve(t *testing.T) {
	source := NewStaticSource([]string{"standard-key"}, []string{"admin-key"})
	keyring := NewKeyring(source, time.Minute, nil)
	ctx := context.Background()

	principal, err := keyring.Resolve(ctx, "standard-key")
	if err != nil {
		t.Fatalf("Resolve standard: %v", err)
	}
	if principal.Admin {
		t.Error("standard key resolved as admin")
	}
	if principal.KeyHash != HashKey("standard-key") {
		t.Errorf("KeyHash = %q, want hash of raw key", principal.KeyHash)
	}

	admin, err := keyring.Resolve(ctx, "admin-key")
	if err != nil {
		t.Fatalf("Resolve admin: %v", err)
	}
	if !admin.Admin {
		t.Error("admin key resolved without admin")
	}

	if _, err := keyring.Resolve(ctx, ""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("empty key = %v, want ErrMissingKey", err)
	}
	if _, err := keyring.Resolve(ctx, "unknown"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("unknown key = %v, want ErrInvalidKey", err)
	}
}

type countingSource struct {
	keys  []Key
	err   error
	loads int
}

func (s *countingSource) Load(ctx context.Context) ([]Key, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.keys, nil
}

func TestKeyringCachesWithinTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	source := &countingSource{keys: []Key{{Hash: HashKey("k")}}}
	keyring := NewKeyring(source, 5*time.Minute, clock)
	ctx := context.Background()

	for range 3 {
		if _, err := keyring.Resolve(ctx, "k"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if source.loads != 1 {
		t.Errorf("loads within TTL = %d, want 1", source.loads)
	}

	now = now.Add(6 * time.Minute)
	if _, err := keyring.Resolve(ctx, "k"); err != nil {
		t.Fatalf("Resolve after TTL: %v", err)
	}
	if source.loads != 2 {
		t.Errorf("loads after TTL = %d, want 2", source.loads)
	}
}

func TestKeyringServesStaleOnSourceFailure(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	source := &countingSource{keys: []Key{{Hash: HashKey("k")}}}
	keyring := NewKeyring(source, time.Minute, clock)
	ctx := context.Background()

	if _, err := keyring.Resolve(ctx, "k"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	source.err = errors.New("secret store down")
	now = now.Add(2 * time.Minute)

	if _, err := keyring.Resolve(ctx, "k"); err != nil {
		t.Errorf("Resolve with failing source = %v, want stale success", err)
	}
}

func TestKeyringExpiredKey(t *testing.T) {
	now := time.Now()
	expiry := now.Add(-time.Hour)

	source := &countingSource{keys: []Key{{Hash: HashKey("k"), ExpiresAt: &expiry}}}
	keyring := NewKeyring(source, time.Minute, func() time.Time { return now })

	if _, err := keyring.Resolve(context.Background(), "k"); !errors.Is(err, ErrExpiredKey) {
		t.Errorf("expired key = %v, want ErrExpiredKey", err)
	}
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Now().Truncate(time.Minute)
	clock := func() time.Time { return now }

	limiter := NewMemoryLimiter(2, clock)

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("first two requests denied")
	}
	if limiter.Allow("a") {
		t.Error("third request in window allowed")
	}

	// independent buckets per key
	if !limiter.Allow("b") {
		t.Error("other key denied")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("a") {
		t.Error("request in new window denied")
	}
}
