package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createPunishmentHistoryCommand creates the /mod punishmenthistory subcommand
func createPunishmentHistoryCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"punishmenthistory",
		"Show the punishment history of a player",
		"mod",
		d.Bind(punishmentHistoryHandler),
	).WithOptions(
		shared.PlayerOption(),
	).WithRank(models.RankAdmin)
}

func punishmentHistoryHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}

	records, err := d.Service.History(ctx.Context(), player.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ctx.Respond(fmt.Sprintf("✅ **%s** has no punishment history.", user.DisplayLabel()))
	}

	return ctx.RespondEmbed(historyEmbed(fmt.Sprintf("📜 Punishment History for %s", user.DisplayLabel()), records))
}

// historyEmbed lists audit rows, newest first, one field each
func historyEmbed(title string, records []models.PunishmentRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  title,
		Color:  shared.ColorInfo,
		Footer: shared.Footer(),
	}

	for i, r := range records {
		if i == maxEmbedEntries {
			embed.Footer.Text = fmt.Sprintf("Showing %d of %d entries", maxEmbedEntries, len(records))
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("%s - %s", r.Action, orNA(r.Username)),
			Value: fmt.Sprintf("**Reason:** %s\n**Proof:** %s\n**By:** %s\n**Date:** %s",
				orNA(r.Reason), orNA(r.Proof), shared.Actor(r.Actor), shared.Timestamp(r.Timestamp)),
		})
	}
	return embed
}
