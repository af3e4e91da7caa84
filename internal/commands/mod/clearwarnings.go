package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createClearWarningsCommand creates the /mod clearwarnings subcommand
func createClearWarningsCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"clearwarnings",
		"Clear all warnings of a player",
		"mod",
		d.Bind(clearWarningsHandler),
	).WithOptions(
		shared.PlayerOption(),
	).WithRank(models.RankManager)
}

func clearWarningsHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}

	n, err := d.Service.ClearWarnings(ctx.Context(), ctx.User().ID, player.ID)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Clear Warnings",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Warnings Cleared", fmt.Sprintf("%d", n)),
	)
	return ctx.Respond(fmt.Sprintf("✅ Cleared %d warning(s) for **%s**", n, user.DisplayLabel()))
}
