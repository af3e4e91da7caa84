package staff

import (
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createStrikeCommand creates the /staff strike subcommand
func createStrikeCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"strike",
		"Give a strike to a staff member",
		"staff",
		d.Bind(strikeHandler),
	).WithOptions(
		shared.UserOption("Staff member to strike"),
		shared.ReasonOption("Reason for strike"),
		shared.ProofOption(),
	).WithRank(models.RankManager)
}

func strikeHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	target := ctx.GetUserOption("user")
	if target == nil {
		return errors.Validation("strike", "user is required")
	}
	reason := ctx.GetStringOption("reason")
	proof := ctx.GetStringOption("proof")

	res, err := d.Service.Strike(ctx.Context(), ctx.User().ID, target.ID, reason, proof)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Strike",
		shared.Field("Staff Member", fmt.Sprintf("<@%s> (%s)", target.ID, target.Username)),
		shared.Field("Reason", reason),
		shared.Field("Proof", proof),
		shared.Field("Total Strikes", fmt.Sprintf("%d", res.Count)),
	)

	if res.Escalated {
		d.Audit.Send(removalEmbed(target, res.Rank, time.Now()))
	}
	return ctx.Respond(strikeMessage(target.Username, res))
}

func strikeMessage(name string, res moderation.Result) string {
	msg := fmt.Sprintf("✅ Successfully gave a strike to **%s** (Strike #%d)", name, res.Count)
	if res.Escalated {
		msg += fmt.Sprintf("\n⚠️ Staff member has been automatically removed from whitelist due to %d strikes!", moderation.EscalationThreshold)
	}
	return msg
}

func removalEmbed(u *discordgo.User, rank models.Rank, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Staff Member Removed",
		Color: shared.ColorDanger,
		Fields: []*discordgo.MessageEmbedField{
			shared.Field("Staff Member", fmt.Sprintf("<@%s> (%s)", u.ID, u.Username)),
			shared.Field("Previous Rank", rank.Title()),
			shared.Field("Reason", fmt.Sprintf("%d Strikes - Automatic Removal", moderation.EscalationThreshold)),
			shared.Field("Timestamp", shared.Timestamp(now)),
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

// createRemoveStrikeCommand creates the /staff removestrike subcommand
func createRemoveStrikeCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"removestrike",
		"Remove a strike from a staff member",
		"staff",
		d.Bind(removeStrikeHandler),
	).WithOptions(
		shared.UserOption("Staff member"),
		shared.ReasonOption("Reason for removal"),
	).WithRank(models.RankManager)
}

func removeStrikeHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	target := ctx.GetUserOption("user")
	if target == nil {
		return errors.Validation("removestrike", "user is required")
	}

	reason := ctx.GetStringOption("reason")

	res, err := d.Service.RemoveStrike(ctx.Context(), target.ID)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Remove Strike",
		shared.Field("Staff Member", fmt.Sprintf("<@%s> (%s)", target.ID, target.Username)),
		shared.Field("Reason", reason),
		shared.Field("Strikes", fmt.Sprintf("%d → %d", res.Affected, res.Count)),
	)
	return ctx.Respond(fmt.Sprintf("✅ Removed a strike from **%s** (%d → %d)", target.Username, res.Affected, res.Count))
}
