package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/config"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Show runtime statistics of the bot",
		"utils",
		statsHandler,
	)
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Statistics",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			shared.InlineField("🤖 Bot Version", config.Version),
			shared.InlineField("🐹 Go Version", strings.TrimPrefix(runtime.Version(), "go")),
			shared.InlineField("📚 DiscordGo Version", discordgo.VERSION),
			shared.InlineField("🖥 RAM Usage", fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024)),
			shared.InlineField("⚙️ CPU", fmt.Sprintf("%d Goroutines / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU())),
			shared.InlineField("⏱ Uptime", formatDuration(time.Since(ctx.Client.StartTime))),
			shared.InlineField("🏠 Guilds", fmt.Sprintf("%d", ctx.Client.GuildCount())),
			shared.InlineField("🧩 Commands", fmt.Sprintf("%d", ctx.Client.Commands.Size())),
		},
		Footer:    shared.Footer(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return ctx.ReplyEphemeralEmbed(embed)
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
