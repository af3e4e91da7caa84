package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createMuteCommand creates the /mod mute subcommand
func createMuteCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"mute",
		"Mute a player in the game chat",
		"mod",
		d.Bind(muteHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.DurationOption(),
		shared.ReasonOption("Reason for mute"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func muteHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	duration := ctx.GetStringOption("duration")
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Mute(ctx.Context(), ctx.User().ID, player, duration, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Mute",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Duration", duration),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Successfully muted **%s** for %s", user.DisplayLabel(), duration), res))
}

// createUnmuteCommand creates the /mod unmute subcommand
func createUnmuteCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Unmute a player",
		"mod",
		d.Bind(unmuteHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.ReasonOption("Reason for unmute"),
	).WithRank(models.RankModerator)
}

func unmuteHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	reason := ctx.GetStringOption("reason")

	res, err := d.Service.Unmute(ctx.Context(), ctx.User().ID, player, reason)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Unmute",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Reason", reason),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Successfully unmuted **%s**", user.DisplayLabel()), res))
}
