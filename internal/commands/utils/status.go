package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/database"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/mqtt"
	"github.com/bwmarrin/discordgo"
)

const (
	statusTimeout = 5 * time.Second
	// pendingLimit caps the backlog read; a full page shows as "N+"
	pendingLimit = 100
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"status",
		"Show the status of the bot and the moderation queue",
		"utils",
		d.Bind(statusHandler),
	)
}

// statusHandler reports the bot, the ledger, the queue API and the broker
func statusHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx.Context(), statusTimeout)
	defer cancel()

	queueStatus := "🔴 | Offline"
	pending, mirror := "N/A", "N/A"
	if d.Relay != nil {
		if h, err := d.Relay.Health(c); err == nil {
			queueStatus = fmt.Sprintf("🟢 | %s (%s)", h.Status, h.Instance)
			pending, mirror = queueCounts(c, d.Relay)
		}
	}

	ledgerStatus := "🟢 | SQLite"
	if db := database.Get(); db != nil {
		ledgerStatus, _ = db.GetStatus(c)
	}

	brokerStatus := "⚪ | Disabled"
	if m := mqtt.Get(); m != nil {
		brokerStatus = "🔴 | Disconnected"
		if m.IsConnected() {
			brokerStatus = "🟢 | Connected"
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Status",
		Color: shared.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			shared.InlineField("Bot", "🟢 | Online"),
			shared.InlineField("Database", ledgerStatus),
			shared.InlineField("Queue API", queueStatus),
			shared.InlineField("MQTT", brokerStatus),
			shared.InlineField("Pending Commands", pending),
			shared.InlineField("Game Mirror", mirror),
			shared.InlineField("Servers", fmt.Sprintf("%d", ctx.Client.GuildCount())),
		},
		Footer: shared.Footer(),
	}
	return ctx.RespondEmbed(embed)
}

// QueueReader is the part of the relay client the status page reads
type QueueReader interface {
	Pending(ctx context.Context, limit int) ([]models.Command, error)
	Bans(ctx context.Context) ([]models.Ban, error)
	Groups(ctx context.Context) ([]models.BlacklistedGroup, error)
}

// queueCounts summarises the queue's backlog and its consumer-facing
// mirror. A failed read shows as N/A.
func queueCounts(ctx context.Context, q QueueReader) (pending, mirror string) {
	pending, mirror = "N/A", "N/A"
	if cmds, err := q.Pending(ctx, pendingLimit); err == nil {
		pending = fmt.Sprintf("%d", len(cmds))
		if len(cmds) >= pendingLimit {
			pending += "+"
		}
	}

	bans, err := q.Bans(ctx)
	if err != nil {
		return pending, mirror
	}
	groups, err := q.Groups(ctx)
	if err != nil {
		return pending, mirror
	}
	return pending, fmt.Sprintf("%d bans · %d crews", len(bans), len(groups))
}
