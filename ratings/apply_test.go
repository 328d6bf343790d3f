package ratings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reed-hollis/photoshelfbackend/workers"
)

type fakeWriter struct {
	mu      sync.Mutex
	written map[string]int
	failOn  map[string]error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{written: make(map[string]int), failOn: make(map[string]error)}
}

func (f *fakeWriter) WriteRating(_ context.Context, filePath string, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[filePath]; ok {
		return err
	}
	f.written[filePath] = rating
	return nil
}

func newApplier(store *fakeStore, writer *fakeWriter) *Applier {
	return &Applier{Store: store, Writer: writer, Pool: workers.NewWritebackPool(2)}
}

func TestApplyBlockedByConflict(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "clean", Stored: intPtr(4), JpgPath: "/p/clean.jpg"},
		{Identity: "dirty", Stored: intPtr(5), Jpg: intPtr(1), JpgPath: "/p/dirty.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, true)

	assert.Equal(t, 0, summary.DBUpdates)
	assert.Equal(t, 0, summary.FileUpdates)
	assert.Empty(t, summary.Failures)
	assert.Empty(t, writer.written)
	assert.Empty(t, store.records)
	assert.Equal(t, 0, store.resetCalls, "a blocked batch must not reset overrule flags")
}

func TestApplyRechecksConflictGate(t *testing.T) {
	// a stale caller passing hasConflicts=false cannot force a partial apply
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "dirty", Stored: intPtr(5), Jpg: intPtr(1), JpgPath: "/p/dirty.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)
	assert.Equal(t, 0, summary.FileUpdates)
	assert.Empty(t, writer.written)
	assert.Equal(t, 0, store.resetCalls)
}

func TestApplyStoreAuthoritativeWritesFiles(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		// resolved photo: store wins, both stale targets get rewritten
		{Identity: "a", Stored: intPtr(5), Overrule: true, Jpg: intPtr(2), Raw: intPtr(1),
			JpgPath: "/p/a.jpg", RawPath: "/p/raw/a.cr2"},
		// store-only photo with a JPG missing its rating
		{Identity: "b", Stored: intPtr(3), JpgPath: "/p/b.jpg"},
		// already agreeing target is skipped
		{Identity: "c", Stored: intPtr(4), Jpg: intPtr(4), JpgPath: "/p/c.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)

	assert.Equal(t, 3, summary.FileUpdates)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, 5, writer.written["/p/a.jpg"])
	assert.Equal(t, 5, writer.written["/p/raw/a.cr2"])
	assert.Equal(t, 3, writer.written["/p/b.jpg"])
	assert.NotContains(t, writer.written, "/p/c.jpg")
	assert.Equal(t, 1, store.resetCalls)
}

func TestApplyEmbeddedAuthoritativeWritesStore(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "a", Jpg: intPtr(2), JpgPath: "/p/a.jpg"},
		{Identity: "b", Raw: intPtr(4), RawPath: "/p/raw/b.nef"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)

	assert.Equal(t, 2, summary.DBUpdates)
	assert.Equal(t, 0, summary.FileUpdates)
	assert.Empty(t, writer.written)

	recA := store.records["a"]
	require.NotNil(t, recA.Rating)
	assert.Equal(t, 2, *recA.Rating)
	require.NotNil(t, recA.Overrule)
	assert.False(t, *recA.Overrule)

	recB := store.records["b"]
	require.NotNil(t, recB.Rating)
	assert.Equal(t, 4, *recB.Rating)
}

func TestApplyFailureIsolation(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()
	writer.failOn["/p/locked.jpg"] = errors.New("file is locked")
	snaps := []Snapshot{
		{Identity: "locked", Stored: intPtr(5), JpgPath: "/p/locked.jpg"},
		{Identity: "fine", Stored: intPtr(3), JpgPath: "/p/fine.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)

	assert.Equal(t, 1, summary.FileUpdates)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "/p/locked.jpg", summary.Failures[0].File)
	assert.Equal(t, "write_jpg", summary.Failures[0].Op)
	assert.Contains(t, summary.Failures[0].Reason, "locked")
	assert.Equal(t, 3, writer.written["/p/fine.jpg"])

	// the batch still completes and still resets the flags
	assert.Equal(t, 1, store.resetCalls)
}

func TestApplyResetsOverruleFlagsExactlyOnce(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "a", Stored: intPtr(5), Overrule: true, Jpg: intPtr(2), JpgPath: "/p/a.jpg"},
		{Identity: "b", Jpg: intPtr(3), JpgPath: "/p/b.jpg"},
	}

	newApplier(store, writer).Apply(context.Background(), snaps, false)

	require.Equal(t, 1, store.resetCalls)
	// the reset is ordered strictly after every store write
	require.NotEmpty(t, store.ops)
	assert.Equal(t, "reset", store.ops[len(store.ops)-1])
}

func TestApplyResetFailureReported(t *testing.T) {
	store := newFakeStore()
	store.resetErr = errors.New("store closed")
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "a", Jpg: intPtr(3), JpgPath: "/p/a.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)

	assert.Equal(t, 1, summary.DBUpdates)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "reset_overrule_flags", summary.Failures[0].Op)
}

func TestApplyRoundTripAlignsAllSources(t *testing.T) {
	// after a clean batch the re-read state must never classify as a
	// conflict again
	store := newFakeStore()
	writer := newFakeWriter()
	snaps := []Snapshot{
		{Identity: "a", Stored: intPtr(5), Overrule: true, Jpg: intPtr(2), JpgPath: "/p/a.jpg"},
		{Identity: "b", Jpg: intPtr(3), JpgPath: "/p/b.jpg"},
		{Identity: "c", Stored: intPtr(4), JpgPath: "/p/c.jpg"},
	}

	summary := newApplier(store, writer).Apply(context.Background(), snaps, false)
	require.Empty(t, summary.Failures)

	// rebuild the post-apply view: store records merged back, file writes
	// reflected, overrule flags reset
	after := make([]Snapshot, len(snaps))
	for i, s := range snaps {
		after[i] = s
		after[i].Overrule = false
		if rec, ok := store.records[s.Identity]; ok {
			after[i].Stored = rec.Rating
		}
		if r, ok := writer.written[s.JpgPath]; ok {
			after[i].Jpg = intPtr(r)
		}
	}

	for _, s := range after {
		class := s.Classify()
		assert.False(t, class.IsConflict(), "%s classified as %s after apply", s.Identity, class)
	}
	assert.False(t, HasConflicts(after))
}

func TestApplyEmptyCollection(t *testing.T) {
	store := newFakeStore()
	writer := newFakeWriter()

	summary := newApplier(store, writer).Apply(context.Background(), nil, false)

	assert.Equal(t, 0, summary.DBUpdates)
	assert.Equal(t, 0, summary.FileUpdates)
	assert.Empty(t, summary.Failures)
	assert.NotEmpty(t, summary.BatchID)
	// even an empty batch settles and clears flags
	assert.Equal(t, 1, store.resetCalls)
}
