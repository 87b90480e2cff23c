package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fathomline/taxa/internal/tags"
)

// sampleCap bounds how many tags each report category carries.
const sampleCap = 10

// Report summarizes one reconciliation run. Samples are capped so the
// response stays readable for large taxonomies.
type Report struct {
	Version        string     `json:"version"`
	SyncTimestamp  time.Time  `json:"sync_timestamp"`
	TagsTotal      int        `json:"tags_total"`
	Added          int        `json:"added"`
	Updated        int        `json:"updated"`
	Removed        int        `json:"removed"`
	Unchanged      int        `json:"unchanged"`
	SkippedInvalid int        `json:"skipped_invalid"`
	AddedSample    []tags.Tag `json:"added_sample,omitempty"`
	UpdatedSample  []Change   `json:"updated_sample,omitempty"`
	RemovedSample  []tags.Tag `json:"removed_sample,omitempty"`
}

// Reconciler syncs the canonical tag set from the external source into
// the published snapshot.
type Reconciler struct {
	source     Source
	store      tags.Store
	cache      *tags.Cache
	sourceName string
	logger     *slog.Logger
	now        func() time.Time
}

// NewReconciler creates a reconciler. A nil clock uses time.Now.
func NewReconciler(source Source, store tags.Store, cache *tags.Cache, sourceName string, logger *slog.Logger, clock func() time.Time) *Reconciler {
	if clock == nil {
		clock = time.Now
	}
	return &Reconciler{
		source:     source,
		store:      store,
		cache:      cache,
		sourceName: sourceName,
		logger:     logger.With("system", "reconcile"),
		now:        clock,
	}
}

// Sync fetches the full tag set, drops invalid entries, diffs against
// the current snapshot, and publishes a new one. The cache is
// invalidated so the next classification sees the fresh taxonomy.
func (r *Reconciler) Sync(ctx context.Context) (*Report, error) {
	fetched, err := r.source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]tags.Tag, 0, len(fetched))
	skipped := 0
	for _, t := range fetched {
		if problems := ValidateTag(t); len(problems) > 0 {
			skipped++
			r.logger.Warn("skipping invalid tag",
				"id", t.ID,
				"name", t.Name,
				"problems", problems,
			)
			continue
		}
		valid = append(valid, t)
	}

	current, err := r.store.Load(ctx)
	if err != nil && !errors.Is(err, tags.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("load current snapshot: %w", err)
	}

	diff := DiffSnapshot(current, valid)

	syncedAt := r.now().UTC()
	snap := &tags.Snapshot{
		Version:       syncedAt.Format("20060102T150405Z"),
		SyncTimestamp: syncedAt,
		Source:        r.sourceName,
		Tags:          valid,
	}

	if err := r.store.Publish(ctx, snap); err != nil {
		return nil, err
	}

	r.cache.Invalidate()

	report := &Report{
		Version:        snap.Version,
		SyncTimestamp:  syncedAt,
		TagsTotal:      len(valid),
		Added:          len(diff.Added),
		Updated:        len(diff.Updated),
		Removed:        len(diff.Removed),
		Unchanged:      diff.Unchanged,
		SkippedInvalid: skipped,
		AddedSample:    capTags(diff.Added),
		UpdatedSample:  capChanges(diff.Updated),
		RemovedSample:  capTags(diff.Removed),
	}

	r.logger.Info("taxonomy synced",
		"version", report.Version,
		"tags", report.TagsTotal,
		"added", report.Added,
		"updated", report.Updated,
		"removed", report.Removed,
		"skipped_invalid", report.SkippedInvalid,
	)

	return report, nil
}

func capTags(list []tags.Tag) []tags.Tag {
	if len(list) > sampleCap {
		return list[:sampleCap]
	}
	return list
}

func capChanges(list []Change) []Change {
	if len(list) > sampleCap {
		return list[:sampleCap]
	}
	return list
}
