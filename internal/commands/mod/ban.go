package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createBanCommand creates the /mod ban subcommand
func createBanCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"ban",
		"Permanently ban a player",
		"mod",
		d.Bind(banHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.ReasonOption("Reason for ban"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func banHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Ban(ctx.Context(), ctx.User().ID, player, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Ban",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Successfully banned **%s**", user.DisplayLabel()), res))
}

// createUnbanCommand creates the /mod unban subcommand
func createUnbanCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"unban",
		"Unban a player",
		"mod",
		d.Bind(unbanHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.ReasonOption("Reason for unban"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func unbanHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Unban(ctx.Context(), ctx.User().ID, player, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Unban",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
	)

	msg := fmt.Sprintf("✅ Successfully unbanned **%s**", user.DisplayLabel())
	if res.Affected == 0 {
		msg += "\nℹ️ No active ban was on record."
	}
	return ctx.Respond(shared.WithRelayNote(msg, res))
}
