package utils

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{time.Hour + 30*time.Second, "1h 30s"},
		{50*time.Hour + 5*time.Minute, "2d 2h 5m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHelpTextGroupsAndRanks(t *testing.T) {
	cmds := map[string]*discord.Command{
		"utils.ping": discord.NewCommand("ping", "Check the bot latency", "utils", nil),
		"mod.ban":    discord.NewCommand("ban", "Permanently ban a player", "mod", nil).WithRank(models.RankModerator),
		"mod.kick":   discord.NewCommand("kick", "Kick a player", "mod", nil).WithRank(models.RankModerator),
	}

	text := helpText(cmds)

	modAt := strings.Index(text, "**/mod**")
	utilsAt := strings.Index(text, "**/utils**")
	if modAt < 0 || utilsAt < 0 || modAt > utilsAt {
		t.Fatalf("groups missing or unsorted:\n%s", text)
	}
	if !strings.Contains(text, "• `/mod ban` - Permanently ban a player (Moderator+)") {
		t.Errorf("expected ranked ban line, got:\n%s", text)
	}
	if !strings.Contains(text, "• `/utils ping` - Check the bot latency\n") {
		t.Errorf("expected unranked ping line, got:\n%s", text)
	}
}

type fakeQueue struct {
	pending int
	bansErr error
}

func (f fakeQueue) Pending(_ context.Context, limit int) ([]models.Command, error) {
	n := f.pending
	if n > limit {
		n = limit
	}
	return make([]models.Command, n), nil
}

func (f fakeQueue) Bans(context.Context) ([]models.Ban, error) {
	if f.bansErr != nil {
		return nil, f.bansErr
	}
	return make([]models.Ban, 3), nil
}

func (f fakeQueue) Groups(context.Context) ([]models.BlacklistedGroup, error) {
	return make([]models.BlacklistedGroup, 1), nil
}

func TestQueueCounts(t *testing.T) {
	tests := []struct {
		name        string
		q           fakeQueue
		wantPending string
		wantMirror  string
	}{
		{"small backlog", fakeQueue{pending: 4}, "4", "3 bans · 1 crews"},
		{"full page", fakeQueue{pending: 500}, "100+", "3 bans · 1 crews"},
		{"mirror unreadable", fakeQueue{bansErr: stderrors.New("down")}, "0", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, mirror := queueCounts(context.Background(), tt.q)
			if pending != tt.wantPending || mirror != tt.wantMirror {
				t.Errorf("queueCounts() = %q, %q, want %q, %q", pending, mirror, tt.wantPending, tt.wantMirror)
			}
		})
	}
}
