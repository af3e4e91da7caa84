// Package staff provides the staff management commands under /staff
package staff

import (
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// RegisterStaffCommands registers all staff commands as /staff subcommands
func RegisterStaffCommands(client *discord.ExtendedClient, d *shared.Deps) {
	staffGroup := client.CommandHandler.BuildCommandGroup(
		"staff",
		"Staff management commands",
		createWhitelistCommand(d),
		createRemoveWhitelistCommand(d),
		createWhitelistedUsersCommand(d),
		createStrikeCommand(d),
		createRemoveStrikeCommand(d),
		createViewLogsCommand(d),
	)

	client.CommandHandler.AddGlobalCommand(staffGroup)
}
