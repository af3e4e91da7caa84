// Package utils provides the utility commands under /utils
package utils

import (
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, d *shared.Deps) {
	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Utility commands",
		createPingCommand(),
		createStatusCommand(d),
		createHelpCommand(),
		createStatsCommand(),
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
