package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

type fakeSource struct {
	roster domain.Roster
	err    error
	calls  int
}

func (f *fakeSource) FetchGroupMembers(_ context.Context, _ string) (domain.Roster, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.roster.Clone(), nil
}

func newTestTracker(t *testing.T, source Source) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "members.json")
	snapshot := NewSnapshotStore(path, zap.NewNop())
	require.NoError(t, snapshot.Load())
	return NewTracker(source, snapshot, "4242", zap.NewNop()), path
}

func TestTrackerColdStartAdoptsRoster(t *testing.T) {
	source := &fakeSource{roster: rosterOf("1", "2")}
	tracker, _ := newTestTracker(t, source)

	delta, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, delta.ColdStart)
	assert.True(t, delta.Empty())
	assert.Equal(t, []string{"1", "2"}, ids(tracker.Snapshot().Current()))
}

func TestTrackerScenario(t *testing.T) {
	source := &fakeSource{roster: rosterOf("1", "2")}
	tracker, path := newTestTracker(t, source)

	_, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	source.roster = rosterOf("2", "3")
	delta, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	assert.False(t, delta.ColdStart)
	assert.Equal(t, []string{"3"}, ids(delta.Joined))
	assert.Equal(t, []string{"1"}, ids(delta.Left))
	assert.Equal(t, []string{"2", "3"}, ids(tracker.Snapshot().Current()))

	reloaded := NewSnapshotStore(path, zap.NewNop())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"2", "3"}, ids(reloaded.Current()))
}

func TestTrackerReplacesSnapshotWithoutDelta(t *testing.T) {
	source := &fakeSource{roster: domain.Roster{{MembershipID: "1", DisplayName: "before"}}}
	tracker, _ := newTestTracker(t, source)
	_, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	source.roster = domain.Roster{{MembershipID: "1", DisplayName: "after"}}
	delta, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, delta.Empty())
	assert.Equal(t, "after", tracker.Snapshot().Current()[0].DisplayName)
}

func TestTrackerFetchFailureLeavesSnapshot(t *testing.T) {
	source := &fakeSource{roster: rosterOf("1", "2")}
	tracker, _ := newTestTracker(t, source)
	_, err := tracker.Sync(context.Background())
	require.NoError(t, err)

	upstream := errors.New("bungie unavailable")
	source.err = upstream
	_, err = tracker.Sync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, []string{"1", "2"}, ids(tracker.Snapshot().Current()))
}

func TestTrackerDedupesFetchedRoster(t *testing.T) {
	source := &fakeSource{roster: rosterOf("1", "1", "2", "")}
	tracker, _ := newTestTracker(t, source)

	_, err := tracker.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(tracker.Snapshot().Current()))
}

func TestSnapshotReplaceFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "members.json")
	snapshot := NewSnapshotStore(path, zap.NewNop())
	require.NoError(t, snapshot.Load())
	require.NoError(t, snapshot.Replace(rosterOf("1")))

	// A directory at the target path makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0644))

	err := snapshot.Replace(rosterOf("2"))
	require.Error(t, err)
	assert.Equal(t, []string{"1"}, ids(snapshot.Current()))
}
