package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createKickCommand creates the /mod kick subcommand
func createKickCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a player from the game",
		"mod",
		d.Bind(kickHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.ReasonOption("Reason for kick"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func kickHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Kick(ctx.Context(), ctx.User().ID, player, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Kick",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Successfully kicked **%s**", user.DisplayLabel()), res))
}
