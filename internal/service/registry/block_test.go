package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

type fakeResolver struct {
	byName map[string]*domain.MemberRecord
	byID   map[string]*domain.MemberRecord
	err    error
	calls  int
}

func (f *fakeResolver) SearchPlayer(_ context.Context, name string) (*domain.MemberRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

func (f *fakeResolver) ResolvePlatformCredential(_ context.Context, credential string) (*domain.MemberRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[credential], nil
}

func newTestBlock(t *testing.T, resolver *fakeResolver) (*BlockList, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "block_list.json")
	block := NewBlockList(path, resolver, zap.NewNop())
	block.now = func() time.Time { return time.Unix(1700000000, 0) }
	require.NoError(t, block.Load())
	return block, path
}

func player(id, name string) *domain.MemberRecord {
	return &domain.MemberRecord{
		MembershipID:      id,
		MembershipType:    domain.MembershipSteam,
		DisplayName:       name,
		GlobalDisplayName: name,
		GlobalNameCode:    7,
	}
}

func TestBlockRegisterByBungieName(t *testing.T) {
	resolver := &fakeResolver{byName: map[string]*domain.MemberRecord{"Troll#0007": player("7", "Troll")}}
	block, path := newTestBlock(t, resolver)

	rec, err := block.Register(context.Background(), "Troll#0007", "https://chat/1", "griefing")
	require.NoError(t, err)
	assert.Equal(t, "7", rec.MembershipID)
	assert.Equal(t, "Troll#0007", rec.BungieName)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"7": {"membership_id": "7", "bungie_name": "Troll#0007", "membership_type": 3, "time": 1700000000, "msg_url": "https://chat/1", "description": "griefing"}}`, string(data))
}

func TestBlockRegisterNotFound(t *testing.T) {
	block, _ := newTestBlock(t, &fakeResolver{})

	_, err := block.Register(context.Background(), "Nobody#1234", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 0, block.Len())
}

func TestBlockRegisterRejectsInvalidKey(t *testing.T) {
	resolver := &fakeResolver{}
	block, _ := newTestBlock(t, resolver)

	_, err := block.Register(context.Background(), "no code here", "", "")
	assert.ErrorIs(t, err, ErrInvalidLookupKey)
	assert.Equal(t, 0, resolver.calls)
}

func TestBlockCheckReturnsMatchesOnly(t *testing.T) {
	resolver := &fakeResolver{byID: map[string]*domain.MemberRecord{"7": player("7", "Troll")}}
	block, _ := newTestBlock(t, resolver)
	_, err := block.Register(context.Background(), "7", "", "")
	require.NoError(t, err)

	matches := block.Check(domain.Roster{{MembershipID: "5"}, {MembershipID: "7"}})

	require.Len(t, matches, 1)
	assert.Equal(t, "7", matches[0].MembershipID)
}

func TestBlockDeregisterResolvesKey(t *testing.T) {
	resolver := &fakeResolver{byName: map[string]*domain.MemberRecord{"Troll#0007": player("7", "Troll")}}
	block, _ := newTestBlock(t, resolver)
	_, err := block.Register(context.Background(), "Troll#0007", "", "")
	require.NoError(t, err)

	rec, removed, err := block.Deregister(context.Background(), "Troll#0007")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "7", rec.MembershipID)
	assert.Equal(t, 0, block.Len())
}

func TestBlockDeregisterFallsBackWhenLookupUnavailable(t *testing.T) {
	resolver := &fakeResolver{byName: map[string]*domain.MemberRecord{"Troll#0007": player("7", "Troll")}}
	block, _ := newTestBlock(t, resolver)
	_, err := block.Register(context.Background(), "Troll#0007", "", "")
	require.NoError(t, err)

	resolver.err = errors.NewUpstreamError(errors.UpstreamTransient, "bungie down", 503, nil)
	_, removed, err := block.Deregister(context.Background(), "troll#0007")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, block.Len())
}

func TestBlockDeregisterStoredIDSkipsLookup(t *testing.T) {
	resolver := &fakeResolver{byID: map[string]*domain.MemberRecord{"7": player("7", "Troll")}}
	block, _ := newTestBlock(t, resolver)
	_, err := block.Register(context.Background(), "7", "", "")
	require.NoError(t, err)
	calls := resolver.calls

	_, removed, err := block.Deregister(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, calls, resolver.calls)
}

func TestBlockDeregisterNotFound(t *testing.T) {
	block, _ := newTestBlock(t, &fakeResolver{})

	_, removed, err := block.Deregister(context.Background(), "Ghost#0001")
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, removed)
}

func TestBlockListPaging(t *testing.T) {
	resolver := &fakeResolver{byID: map[string]*domain.MemberRecord{}}
	block, _ := newTestBlock(t, resolver)
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("%d", 100+i)
		resolver.byID[id] = player(id, "p"+id)
		block.now = func() time.Time { return time.Unix(int64(1700000000+i), 0) }
		_, err := block.Register(context.Background(), id, "", "")
		require.NoError(t, err)
	}

	first := block.List(0)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 25, first.Total)
	require.Len(t, first.Records, 10)
	assert.Equal(t, "100", first.Records[0].MembershipID)

	last := block.List(99)
	assert.Equal(t, 2, last.Page)
	require.Len(t, last.Records, 5)
	assert.Equal(t, "124", last.Records[4].MembershipID)

	fromEnd := block.List(-1)
	assert.Equal(t, 2, fromEnd.Page)

	clampedLow := block.List(-10)
	assert.Equal(t, 0, clampedLow.Page)
}

func TestBlockListEmpty(t *testing.T) {
	block, _ := newTestBlock(t, &fakeResolver{})

	page := block.List(3)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Records)
}

func TestBlockLoadDropsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block_list.json")
	doc := `{
  "7": {"bungie_name": "Troll#0007", "membership_id": "7", "membership_type": 3, "time": 1700000000, "msg_url": "", "description": ""},
  "8": {"bungie_name": "Bad#0008", "membership_id": "8", "membership_type": "steam", "time": 1700000000},
  "9": {"bungie_name": "Mismatch#0009", "membership_id": "10", "membership_type": 3, "time": 1700000000}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	block := NewBlockList(path, &fakeResolver{}, zap.NewNop())
	require.NoError(t, block.Load())

	assert.Equal(t, 1, block.Len())
	assert.Len(t, block.Check(domain.Roster{{MembershipID: "7"}}), 1)
}
