package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/fathomline/taxa/internal/tags"
)

type memStore struct {
	snap      *tags.Snapshot
	published int
}

func (s *memStore) Load(ctx context.Context) (*tags.Snapshot, error) {
	if s.snap == nil {
		return nil, tags.ErrSnapshotNotFound
	}
	return s.snap, nil
}

func (s *memStore) Publish(ctx context.Context, snap *tags.Snapshot) error {
	s.snap = snap
	s.published++
	return nil
}

type listSource struct {
	list []tags.Tag
}

func (s *listSource) FetchAll(ctx context.Context) ([]tags.Tag, error) {
	return s.list, nil
}

func TestSyncPublishesAndReports(t *testing.T) {
	store := &memStore{snap: &tags.Snapshot{Version: "v1", Tags: []tags.Tag{
		{ID: "a", Name: "Engineering", Type: tags.TypePractice, ShortForm: "ENG"},
		{ID: "b", Name: "Cloud", Type: tags.TypeStream},
	}}}
	cache := tags.NewCache(store, time.Hour, discard(), nil)

	source := &listSource{list: []tags.Tag{
		{ID: "a", Name: "Engineering", Type: tags.TypePractice, ShortForm: "SWE"},
		{ID: "c", Name: "Security", Type: tags.TypeStream},
		{Name: "no id", Type: tags.TypeStream},
	}}

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(source, store, cache, "taxonomy", discard(), func() time.Time { return now })

	report, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if store.published != 1 {
		t.Errorf("published = %d, want 1", store.published)
	}
	if report.Added != 1 || report.Updated != 1 || report.Removed != 1 || report.Unchanged != 0 {
		t.Errorf("report = %+v, want added=1 updated=1 removed=1 unchanged=0", report)
	}
	if report.SkippedInvalid != 1 {
		t.Errorf("SkippedInvalid = %d, want 1", report.SkippedInvalid)
	}
	if report.TagsTotal != 2 {
		t.Errorf("TagsTotal = %d, want 2 valid tags", report.TagsTotal)
	}
	if report.Version != "20260826T120000Z" {
		t.Errorf("Version = %q", report.Version)
	}
	if len(report.AddedSample) != 1 || report.AddedSample[0].ID != "c" {
		t.Errorf("AddedSample = %v", report.AddedSample)
	}

	if store.snap.Source != "taxonomy" || store.snap.TagsCount != 2 {
		t.Errorf("published snapshot = %+v", store.snap)
	}
}

func TestSyncFirstRun(t *testing.T) {
	store := &memStore{}
	cache := tags.NewCache(store, time.Hour, discard(), nil)
	source := &listSource{list: []tags.Tag{
		{ID: "a", Name: "Solve", Type: tags.TypeHorizon},
		{ID: "b", Name: "Engineering", Type: tags.TypePractice},
	}}

	r := NewReconciler(source, store, cache, "taxonomy", discard(), nil)

	report, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Added != 2 || report.Removed != 0 {
		t.Errorf("report = %+v, want everything added on first run", report)
	}
}

func TestSyncInvalidatesCache(t *testing.T) {
	store := &memStore{snap: &tags.Snapshot{Version: "v1", Tags: []tags.Tag{
		{ID: "a", Name: "Solve", Type: tags.TypeHorizon},
	}}}
	cache := tags.NewCache(store, time.Hour, discard(), nil)

	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	source := &listSource{list: []tags.Tag{
		{ID: "a", Name: "Solve", Type: tags.TypeHorizon},
		{ID: "b", Name: "Engineering", Type: tags.TypePractice},
	}}
	r := NewReconciler(source, store, cache, "taxonomy", discard(), nil)

	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	snap, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot after sync: %v", err)
	}
	if len(snap.Tags) != 2 {
		t.Errorf("cache still serving %d tags, want the fresh 2", len(snap.Tags))
	}
}
