// Package game provides the commands that act on the game as a whole,
// organized as subcommands under /game
package game

import (
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// RegisterGameCommands registers all game commands as /game subcommands
func RegisterGameCommands(client *discord.ExtendedClient, d *shared.Deps) {
	gameGroup := client.CommandHandler.BuildCommandGroup(
		"game",
		"Game management commands",
		createAnnounceCommand(d),
		createMessageCommand(d),
		createAddCashCommand(d),
		createRemoveCashCommand(d),
		createSetCashCommand(d),
		createRestartAllServersCommand(d),
		createUnbanWaveCommand(d),
		createBlacklistCrewCommand(d),
		createRemoveCrewBlacklistCommand(d),
		createBlacklistedCrewsCommand(d),
		createChangePlaceIDCommand(d),
		createChangeUniverseIDCommand(d),
		createCheckCCUCommand(d),
	)

	client.CommandHandler.AddGlobalCommand(gameGroup)
}
