package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createTempBanCommand creates the /mod tempban subcommand
func createTempBanCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"tempban",
		"Temporarily ban a player",
		"mod",
		d.Bind(tempBanHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.DurationOption(),
		shared.ReasonOption("Reason for ban"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func tempBanHandler(ctx *discord.CommandContext, d *shared.Deps) error {
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

	res, err := d.Service.TempBan(ctx.Context(), ctx.User().ID, player, duration, reason, proof)
	if err != nil {
		return err
	}

	expires := "Permanent"
	if res.ExpiresAt != nil {
		expires = shared.Timestamp(*res.ExpiresAt)
	}
	d.LogCommand(ctx, "Tempban",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Duration", duration),
		shared.Field("Expires", expires),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Successfully temp-banned **%s** for %s", user.DisplayLabel(), duration), res))
}
