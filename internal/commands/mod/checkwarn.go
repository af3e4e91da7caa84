package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// maxEmbedEntries caps the list embeds, the rest is summarized in the footer
const maxEmbedEntries = 10

// createCheckWarnCommand creates the /mod checkwarn subcommand
func createCheckWarnCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"checkwarn",
		"Check the warnings of a player",
		"mod",
		d.Bind(checkWarnHandler),
	).WithOptions(
		shared.PlayerOption(),
	).WithRank(models.RankModerator)
}

func checkWarnHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}

	warnings, err := d.Service.Warnings(ctx.Context(), player.ID)
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		return ctx.Respond(fmt.Sprintf("✅ **%s** has no warnings.", user.DisplayLabel()))
	}

	return ctx.RespondEmbed(warningsEmbed(user.DisplayLabel(), warnings))
}

func warningsEmbed(name string, warnings []models.Warning) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚠️ Warnings for %s", name),
		Description: fmt.Sprintf("Total warnings: **%d**", len(warnings)),
		Color:       shared.ColorWarning,
		Footer:      shared.Footer(),
	}

	for i, w := range warnings {
		if i == maxEmbedEntries {
			embed.Footer.Text = fmt.Sprintf("Showing %d of %d warnings", maxEmbedEntries, len(warnings))
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("Warning #%d", len(warnings)-i),
			Value: fmt.Sprintf("**Reason:** %s\n**Proof:** %s\n**By:** %s\n**Date:** %s",
				w.Reason, orNA(w.Proof), shared.Actor(w.IssuedBy), shared.Timestamp(w.IssuedAt)),
		})
	}
	return embed
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
