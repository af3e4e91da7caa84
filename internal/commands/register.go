// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by group (mod, staff, game, utils).
package commands

import (
	"github.com/PancyStudios/ModRelayGo/internal/commands/game"
	"github.com/PancyStudios/ModRelayGo/internal/commands/mod"
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/internal/commands/staff"
	"github.com/PancyStudios/ModRelayGo/internal/commands/utils"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, d *shared.Deps) {
	// Player moderation (/mod ban, /mod warn, ...)
	mod.RegisterModCommands(client, d)

	// Staff whitelist and strikes
	staff.RegisterStaffCommands(client, d)

	// Game wide actions and settings
	game.RegisterGameCommands(client, d)

	utils.RegisterUtilsCommands(client, d)
}
