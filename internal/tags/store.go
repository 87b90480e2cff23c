package tags

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fathomline/taxa/pkg/storage"
)

const (
	// SnapshotKey is the canonical snapshot blob key.
	SnapshotKey = "tags/current.json"
	// BackupPrefix prefixes timestamped snapshot backups.
	BackupPrefix = "tags/backups/"

	snapshotContentType = "application/json"
)

// Store persists tag snapshots in blob storage.
type Store interface {
	// Load reads the canonical snapshot. Returns ErrSnapshotNotFound when
	// none has been published.
	Load(ctx context.Context) (*Snapshot, error)
	// Publish backs up the current canonical snapshot under a timestamped
	// key, then overwrites it with the given snapshot.
	Publish(ctx context.Context, snap *Snapshot) error
}

type blobStore struct {
	blobs  storage.System
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a blob-backed snapshot store.
func NewStore(blobs storage.System, logger *slog.Logger) Store {
	return &blobStore{
		blobs:  blobs,
		logger: logger.With("system", "tags"),
		now:    time.Now,
	}
}

func (s *blobStore) Load(ctx context.Context) (*Snapshot, error) {
	body, err := s.blobs.Download(ctx, SnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}

	return &snap, nil
}

func (s *blobStore) Publish(ctx context.Context, snap *Snapshot) error {
	if err := s.backup(ctx); err != nil {
		return err
	}

	snap.TagsCount = len(snap.Tags)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.blobs.Upload(ctx, SnapshotKey, bytes.NewReader(data), snapshotContentType); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	s.logger.Info("snapshot published",
		"version", snap.Version,
		"tags", snap.TagsCount,
	)

	return nil
}

func (s *blobStore) backup(ctx context.Context) error {
	body, err := s.blobs.Download(ctx, SnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read current snapshot for backup: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read current snapshot for backup: %w", err)
	}

	key := fmt.Sprintf("%s%d.json", BackupPrefix, s.now().UTC().Unix())
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(data), snapshotContentType); err != nil {
		return fmt.Errorf("write snapshot backup: %w", err)
	}

	s.logger.Info("snapshot backed up", "key", key)
	return nil
}
