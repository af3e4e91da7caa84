package queue

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	s, err := Open(filepath.Join(t.TempDir(), "modqueue.db"), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestEnqueueRejectsMissingActionOrData(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, "", json.RawMessage(`{"userId":"1"}`))
	assert.True(t, errors.Is(err, errors.KindValidation))

	_, err = s.Enqueue(ctx, models.ActionKick, nil)
	assert.True(t, errors.Is(err, errors.KindValidation))

	_, err = s.Enqueue(ctx, models.ActionKick, json.RawMessage(`null`))
	assert.True(t, errors.Is(err, errors.KindValidation))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Pending)
}

func TestEnqueueAcceptsEmptyObject(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.Enqueue(context.Background(), models.ActionRestartAllServers, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestBanScenario(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, models.ActionBan, json.RawMessage(`{"userId":"123","reason":"cheating"}`))
	require.NoError(t, err)

	pending, err := s.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, models.ActionBan, pending[0].Action)
	assert.JSONEq(t, `{"userId":"123","reason":"cheating"}`, string(pending[0].Payload))

	bans, err := s.ListBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "123", bans[0].SubjectID)
	assert.Equal(t, "Unknown", bans[0].Username)
	assert.Equal(t, "System", bans[0].IssuedBy)
	assert.True(t, bans[0].IsPermanent())

	changed, err := s.MarkExecuted(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	pending, err = s.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEnqueueNumericUserID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, models.ActionBan, json.RawMessage(`{"userId":987,"reason":"exploit","expiresAt":1741000000000}`))
	require.NoError(t, err)

	ban, err := s.GetBan(ctx, "987")
	require.NoError(t, err)
	require.NotNil(t, ban.ExpiresAt)
	assert.Equal(t, int64(1741000000000), ban.ExpiresAt.UnixMilli())
}

func TestMirrorActionsRequireTarget(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, action := range []models.Action{models.ActionBan, models.ActionUnban, models.ActionBlacklistCrew, models.ActionRemoveCrewBlacklist} {
		_, err := s.Enqueue(ctx, action, json.RawMessage(`{"reason":"x"}`))
		assert.True(t, errors.Is(err, errors.KindValidation), "action %s", action)
	}

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Pending, "a rejected mirror update must roll back the insert")
}

func TestUnbanAndUnbanWave(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		_, err := s.Enqueue(ctx, models.ActionBan, raw(t, models.BanPayload{UserID: models.SubjectID(id), Reason: "r"}))
		require.NoError(t, err)
	}

	_, err := s.Enqueue(ctx, models.ActionUnban, json.RawMessage(`{"userId":"2"}`))
	require.NoError(t, err)

	_, err = s.GetBan(ctx, "2")
	assert.True(t, errors.Is(err, errors.KindNotFound))

	bans, err := s.ListBans(ctx)
	require.NoError(t, err)
	assert.Len(t, bans, 2)

	_, err = s.Enqueue(ctx, models.ActionUnbanWave, json.RawMessage(`{}`))
	require.NoError(t, err)

	bans, err = s.ListBans(ctx)
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestBanUpsertReplacesPrevious(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, models.ActionBan, json.RawMessage(`{"userId":"5","reason":"first"}`))
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, models.ActionBan, json.RawMessage(`{"userId":"5","reason":"second","username":"bob"}`))
	require.NoError(t, err)

	bans, err := s.ListBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "second", bans[0].Reason)
	assert.Equal(t, "bob", bans[0].Username)
}

func TestGroupMirror(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, models.ActionBlacklistCrew, json.RawMessage(`{"groupId":"777"}`))
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, models.ActionBlacklistCrew, json.RawMessage(`{"groupId":888,"blacklistedBy":"42"}`))
	require.NoError(t, err)

	groups, err := s.ListBlacklistedGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "System", groups[0].IssuedBy)
	assert.Equal(t, "42", groups[1].IssuedBy)

	_, err = s.Enqueue(ctx, models.ActionRemoveCrewBlacklist, json.RawMessage(`{"groupId":"777"}`))
	require.NoError(t, err)

	groups, err = s.ListBlacklistedGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "888", groups[0].GroupID)
}

func TestListPendingOrderAndLimit(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 60; i++ {
		id, err := s.Enqueue(ctx, models.ActionAnnounce, json.RawMessage(`{"message":"hi"}`))
		require.NoError(t, err)
		ids = append(ids, id)
		if i%2 == 0 {
			clock.Advance(time.Millisecond)
		}
	}

	pending, err := s.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, DefaultBatchSize)
	for i, cmd := range pending {
		assert.Equal(t, ids[i], cmd.ID, "commands must come back in submission order")
	}

	pending, err = s.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 10)

	pending, err = s.ListPending(ctx, 10_000)
	require.NoError(t, err)
	assert.Len(t, pending, 60)
}

func TestMarkExecutedIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, models.ActionKick, json.RawMessage(`{"userId":"1","reason":"afk"}`))
	require.NoError(t, err)

	changed, err := s.MarkExecuted(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.MarkExecuted(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.MarkExecuted(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, changed)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Executed)
	assert.Equal(t, int64(0), st.Pending)
}

func TestPurgeExecutedOlderThan(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	oldExecuted, err := s.Enqueue(ctx, models.ActionKick, json.RawMessage(`{"userId":"1"}`))
	require.NoError(t, err)
	oldPending, err := s.Enqueue(ctx, models.ActionKick, json.RawMessage(`{"userId":"2"}`))
	require.NoError(t, err)
	_, err = s.MarkExecuted(ctx, oldExecuted)
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	youngExecuted, err := s.Enqueue(ctx, models.ActionKick, json.RawMessage(`{"userId":"3"}`))
	require.NoError(t, err)
	_, err = s.MarkExecuted(ctx, youngExecuted)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	n, err := s.PurgeExecutedOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pending, err := s.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, oldPending, pending[0].ID, "pending rows survive regardless of age")

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Executed, "young executed rows are kept")
}

func TestSweepExpiredBans(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	expiresAt := clock.Now().Add(time.Hour).UnixMilli()
	_, err := s.Enqueue(ctx, models.ActionBan, raw(t, models.BanPayload{UserID: "10", Reason: "temp", ExpiresAt: &expiresAt}))
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, models.ActionBan, raw(t, models.BanPayload{UserID: "11", Reason: "perm"}))
	require.NoError(t, err)

	swept, err := s.SweepExpiredBans(ctx)
	require.NoError(t, err)
	assert.Empty(t, swept, "nothing has expired yet")

	clock.Advance(time.Hour)

	swept, err = s.SweepExpiredBans(ctx)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, "10", swept[0].SubjectID)

	_, err = s.GetBan(ctx, "10")
	assert.True(t, errors.Is(err, errors.KindNotFound))
	_, err = s.GetBan(ctx, "11")
	assert.NoError(t, err)

	pending, err := s.ListPending(ctx, 0)
	require.NoError(t, err)
	last := pending[len(pending)-1]
	assert.Equal(t, models.ActionUnban, last.Action)
	assert.JSONEq(t, `{"userId":"10"}`, string(last.Payload))

	swept, err = s.SweepExpiredBans(ctx)
	require.NoError(t, err)
	assert.Empty(t, swept, "sweeping twice is a no-op")

	pendingAfter, err := s.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pendingAfter, len(pending))
}
