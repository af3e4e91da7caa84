// Package mod provides the player moderation commands, organized as
// subcommands under /mod. Each command is in its own file.
package mod

import (
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, d *shared.Deps) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Player moderation commands",
		createKickCommand(d),
		createBanCommand(d),
		createUnbanCommand(d),
		createTempBanCommand(d),
		createCheckBanCommand(d),
		createWarnCommand(d),
		createCheckWarnCommand(d),
		createClearWarningsCommand(d),
		createMuteCommand(d),
		createUnmuteCommand(d),
		createWhoisCommand(d),
		createPunishmentHistoryCommand(d),
		createBannedUsersCommand(d),
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}
