package staff

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createViewLogsCommand creates the /staff viewlogs subcommand
func createViewLogsCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"viewlogs",
		"View the latest actions of a staff member",
		"staff",
		d.Bind(viewLogsHandler),
	).WithOptions(
		shared.UserOption("Staff member"),
	).WithRank(models.RankManager)
}

func viewLogsHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	target := ctx.GetUserOption("user")
	if target == nil {
		return errors.Validation("viewlogs", "user is required")
	}

	records, err := d.Service.StaffLogs(ctx.Context(), target.ID)
	if err != nil {
		return err
	}
	strikes, err := d.Service.Strikes(ctx.Context(), target.ID)
	if err != nil {
		return err
	}

	return ctx.RespondEmbed(logsEmbed(target.Username, records, len(strikes)))
}

func logsEmbed(name string, records []models.PunishmentRecord, strikes int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Logs for %s", name),
		Description: fmt.Sprintf("Actions: **%d** | Strikes: **%d**", len(records), strikes),
		Color:       shared.ColorInfo,
		Footer:      shared.Footer(),
	}
	if len(records) == 0 {
		embed.Description += "\nNo actions recorded."
		return embed
	}

	var list string
	for _, r := range records {
		list += fmt.Sprintf("**%s** %s (%s) %s\n", r.Action, r.Username, r.SubjectID, shared.Relative(r.Timestamp))
	}
	embed.Fields = append(embed.Fields, shared.Field("Recent Actions", truncate(list, 1024)))
	return embed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
