package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a player",
		"mod",
		d.Bind(warnHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.ReasonOption("Reason for warning"),
		shared.ProofOption(),
	).WithRank(models.RankModerator)
}

func warnHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Warn(ctx.Context(), ctx.User().ID, player, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Warn",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
		shared.Field("Total Warnings", fmt.Sprintf("%d", res.Count)),
	)

	return ctx.Respond(shared.WithRelayNote(warnMessage(user.DisplayLabel(), res), res))
}

func warnMessage(name string, res moderation.Result) string {
	msg := fmt.Sprintf("✅ Successfully warned **%s** (Warning #%d)", name, res.Count)
	if res.Escalated {
		msg += fmt.Sprintf("\n⚠️ Player has been automatically banned for 3 days due to %d warnings!", res.Count)
		if !res.EscalationRelayed {
			msg += "\n⚠️ The automatic ban could not be sent to the game."
		}
	}
	return msg
}
