package utils

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Check the bot latency",
		"utils",
		pingHandler,
	)
}

// pingHandler handles the /utils ping command
func pingHandler(ctx *discord.CommandContext) error {
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	return ctx.ReplyEphemeral(fmt.Sprintf("🏓 Pong! Latency: %dms", latency))
}
