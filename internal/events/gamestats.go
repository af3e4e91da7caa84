package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/PancyStudios/ModRelayGo/pkg/scheduler"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Update intervals of the game stats tasks
const (
	PresenceInterval     = 10 * time.Second
	VoiceChannelInterval = 10 * time.Second
	StatsMessageInterval = 10 * time.Minute

	milestoneStep = 10000
)

// StatsSource fetches the live game stats
type StatsSource interface {
	GameStats(ctx context.Context, universeID string) *roblox.GameStats
}

// UniverseSource returns the current universe id
type UniverseSource interface {
	UniverseID(ctx context.Context) (string, error)
}

// StatsChannels are the channels kept in sync with the game stats. Empty ids
// disable the matching updater.
type StatsChannels struct {
	VisitsChannelID  string
	PlayingChannelID string
	StatsChannelID   string
}

// GameStats mirrors the game player count and visits into the bot presence
// and the configured channels
type GameStats struct {
	session  *discordgo.Session
	stats    StatsSource
	universe UniverseSource
	sched    *scheduler.Scheduler
	channels StatsChannels
	printer  *message.Printer

	once      sync.Once
	mu        sync.Mutex
	lastNames map[string]string
}

// NewGameStats creates the updaters. They run once Start is called.
func NewGameStats(session *discordgo.Session, stats StatsSource, universe UniverseSource, sched *scheduler.Scheduler, channels StatsChannels) *GameStats {
	return &GameStats{
		session:   session,
		stats:     stats,
		universe:  universe,
		sched:     sched,
		channels:  channels,
		printer:   message.NewPrinter(language.English),
		lastNames: make(map[string]string),
	}
}

// Start runs every updater once and schedules them. Later calls are no-ops.
func (g *GameStats) Start() {
	g.once.Do(func() {
		go func() {
			defer errors.RecoverMiddleware()()
			ctx := context.Background()
			g.updatePresence(ctx)
			g.updateVoiceChannels(ctx)
			g.postStats(ctx)
		}()

		g.sched.AddTicker("presence", PresenceInterval, g.updatePresence)
		if g.channels.VisitsChannelID != "" || g.channels.PlayingChannelID != "" {
			g.sched.AddTicker("voice-channels", VoiceChannelInterval, g.updateVoiceChannels)
		}
		if g.channels.StatsChannelID != "" {
			g.sched.AddTicker("stats-message", StatsMessageInterval, g.postStats)
		}
		logger.Info("Game stats updaters started", "GameStats")
	})
}

func (g *GameStats) fetch(ctx context.Context) *roblox.GameStats {
	id, err := g.universe.UniverseID(ctx)
	if err != nil || id == "" {
		logger.Warn("No universe id configured for game stats", "GameStats")
		return nil
	}
	return g.stats.GameStats(ctx, id)
}

func (g *GameStats) updatePresence(ctx context.Context) {
	stats := g.fetch(ctx)
	if stats == nil {
		return
	}
	if err := g.session.UpdateWatchStatus(0, g.presenceText(stats)); err != nil {
		logger.Debug(fmt.Sprintf("Error updating presence: %v", err), "GameStats")
	}
}

func (g *GameStats) updateVoiceChannels(ctx context.Context) {
	stats := g.fetch(ctx)
	if stats == nil {
		return
	}
	g.rename(g.channels.VisitsChannelID, g.visitsName(stats))
	g.rename(g.channels.PlayingChannelID, g.playingName(stats))
}

// rename skips channels whose name is unchanged, renames are heavily rate
// limited by Discord
func (g *GameStats) rename(channelID, name string) {
	if channelID == "" {
		return
	}

	g.mu.Lock()
	same := g.lastNames[channelID] == name
	g.mu.Unlock()
	if same {
		return
	}

	if _, err := g.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}); err != nil {
		logger.Debug(fmt.Sprintf("Error renaming channel %s: %v", channelID, err), "GameStats")
		return
	}

	g.mu.Lock()
	g.lastNames[channelID] = name
	g.mu.Unlock()
}

func (g *GameStats) postStats(ctx context.Context) {
	if g.channels.StatsChannelID == "" {
		return
	}
	stats := g.fetch(ctx)
	if stats == nil {
		return
	}
	if _, err := g.session.ChannelMessageSend(g.channels.StatsChannelID, g.statsMessage(stats)); err != nil {
		logger.Warn(fmt.Sprintf("Error posting stats message: %v", err), "GameStats")
	}
}

// Milestone is the next multiple of 10000 at or above visits
func Milestone(visits int64) int64 {
	if visits <= 0 {
		return 0
	}
	return (visits + milestoneStep - 1) / milestoneStep * milestoneStep
}

func (g *GameStats) presenceText(s *roblox.GameStats) string {
	return g.printer.Sprintf("%d players are currently playing", s.Playing)
}

func (g *GameStats) visitsName(s *roblox.GameStats) string {
	return g.printer.Sprintf("👥 Visits: %d", s.Visits)
}

func (g *GameStats) playingName(s *roblox.GameStats) string {
	return g.printer.Sprintf("🎮 Playing: %d", s.Playing)
}

func (g *GameStats) statsMessage(s *roblox.GameStats) string {
	rule := strings.Repeat("-", 55)
	lines := []string{
		rule,
		rule,
		g.printer.Sprintf("🎮 Active players: %d", s.Playing),
		rule,
		rule,
		g.printer.Sprintf("👥 Visits: %d", s.Visits),
		g.printer.Sprintf("🎯 Next milestone: %d/%d", s.Visits, Milestone(s.Visits)),
		rule,
		rule,
	}
	return strings.Join(lines, "\n")
}
