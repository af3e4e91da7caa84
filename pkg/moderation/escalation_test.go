package moderation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/ledger"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"3d 2h 1m", 3*24*time.Hour + 2*time.Hour + time.Minute},
		{"1d1d", 48 * time.Hour},
		{"90m", 90 * time.Minute},
		{"for 2h please", 2 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "soon", "0d", "10s", "99999999999999999999d"} {
		_, err := ParseDuration(bad)
		assert.True(t, errors.Is(err, errors.KindValidation), bad)
	}
}

func TestWarningEscalationThreshold(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	_, ok := WarningEscalation("1", "a", 2, now)
	assert.False(t, ok)

	ban, ok := WarningEscalation("1", "a", 3, now)
	require.True(t, ok)
	assert.Equal(t, now.Add(72*time.Hour), *ban.ExpiresAt)
	assert.Equal(t, SystemActor, ban.IssuedBy)

	_, ok = WarningEscalation("1", "a", 7, now)
	assert.True(t, ok)

	assert.False(t, StrikeEscalation(2))
	assert.True(t, StrikeEscalation(3))
	assert.True(t, StrikeEscalation(4))
}

func TestRankAtLeast(t *testing.T) {
	assert.True(t, RankAtLeast(models.RankOwner, models.RankModerator))
	assert.True(t, RankAtLeast(models.RankAdmin, models.RankAdmin))
	assert.False(t, RankAtLeast(models.RankModerator, models.RankManager))
	assert.False(t, RankAtLeast("", models.RankModerator))
	assert.False(t, RankAtLeast("janitor", models.RankModerator))
}

func TestAuthorizerOwnerBypass(t *testing.T) {
	store, err := ledger.OpenSQLite(filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	a := NewAuthorizer(store, "owner")

	ok, err := a.HasCapability(ctx, "owner", models.RankOwner)
	require.NoError(t, err)
	assert.True(t, ok, "the owner needs no whitelist entry")

	require.NoError(t, store.UpsertStaff(ctx, models.StaffMember{DiscordID: "owner", Rank: models.RankModerator}))
	ok, err = a.HasCapability(ctx, "owner", models.RankOwner)
	require.NoError(t, err)
	assert.True(t, ok, "a lower whitelist rank never demotes the owner")

	ok, err = a.HasCapability(ctx, "stranger", models.RankModerator)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.UpsertStaff(ctx, models.StaffMember{DiscordID: "m", Rank: models.RankManager}))
	rank, err := a.RankOf(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, models.RankManager, rank)

	ok, err = a.HasCapability(ctx, "m", models.RankOwner)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, NewAuthorizer(store, "").IsOwner(""))
}

func TestRemovalOrderParse(t *testing.T) {
	assert.Equal(t, RemoveOldestFirst, ParseRemovalOrder(" Oldest "))
	assert.Equal(t, RemoveNewestFirst, ParseRemovalOrder("newest"))
	assert.Equal(t, RemoveNewestFirst, ParseRemovalOrder(""))

	_, ok := RemoveNewestFirst.Pick(nil)
	assert.False(t, ok)
}

func TestSweeperLiftsExpiredBans(t *testing.T) {
	svc, store, relay, clk := newTestService(t, RemoveNewestFirst)
	ctx := context.Background()

	_, err := svc.TempBan(ctx, "mod1", Player{ID: "1", Name: "short"}, "1h", "r", "p")
	require.NoError(t, err)
	_, err = svc.TempBan(ctx, "mod1", Player{ID: "2", Name: "long"}, "3d", "r", "p")
	require.NoError(t, err)
	_, err = svc.Ban(ctx, "mod1", Player{ID: "3", Name: "forever"}, "r", "p")
	require.NoError(t, err)

	sweeper := NewSweeper(store, relay, clk.Now)

	lifted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, lifted)

	clk.Advance(time.Hour)
	lifted, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, lifted, "a ban expiring exactly now is lifted")

	last := relay.sent[len(relay.sent)-1]
	assert.Equal(t, models.ActionUnban, last.action)
	assert.Equal(t, models.SubjectID("1"), last.payload.(models.SubjectPayload).UserID)

	relay.fail = true
	clk.Advance(100 * 24 * time.Hour)
	lifted, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, lifted, "relay failures do not keep the ban")

	bans, err := store.ListBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "3", bans[0].SubjectID)
}

// rebanStore re-issues a permanent ban right after the expired list is read
type rebanStore struct {
	ledger.Store
	subject string
	at      time.Time
}

func (s *rebanStore) ListExpiredBans(ctx context.Context, now time.Time) ([]models.Ban, error) {
	expired, err := s.Store.ListExpiredBans(ctx, now)
	if err != nil {
		return nil, err
	}
	return expired, s.Store.UpsertBan(ctx, models.Ban{
		SubjectID: s.subject,
		Username:  "again",
		Reason:    "permanent",
		IssuedBy:  "mod2",
		IssuedAt:  s.at,
	})
}

func TestSweeperKeepsBanReissuedDuringSweep(t *testing.T) {
	svc, store, relay, clk := newTestService(t, RemoveNewestFirst)
	ctx := context.Background()

	_, err := svc.TempBan(ctx, "mod1", Player{ID: "42", Name: "again"}, "1h", "r", "p")
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)
	sentBefore := len(relay.sent)

	sweeper := NewSweeper(&rebanStore{Store: store, subject: "42", at: clk.Now()}, relay, clk.Now)
	lifted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, lifted)
	assert.Len(t, relay.sent, sentBefore, "no unban is relayed for a re-issued ban")

	ban, err := store.GetBan(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.True(t, ban.IsPermanent())
}
