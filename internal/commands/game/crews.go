package game

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/bwmarrin/discordgo"
)

func groupOption() *discordgo.ApplicationCommandOption {
	return shared.StringOption("groupid", "Roblox group ID", true)
}

func groupURL(id string) string {
	return "https://www.roblox.com/groups/" + id
}

// createBlacklistCrewCommand creates the /game blacklistcrew subcommand
func createBlacklistCrewCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"blacklistcrew",
		"Blacklist a Roblox group from the game",
		"game",
		d.Bind(blacklistCrewHandler),
	).WithOptions(groupOption()).WithRank(models.RankOwner)
}

func blacklistCrewHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	groupID := ctx.GetStringOption("groupid")
	res, err := d.Service.BlacklistGroup(ctx.Context(), ctx.User().ID, groupID)
	if err != nil {
		return err
	}

	group := d.Roblox.GroupInfo(ctx.Context(), groupID)
	d.LogCommand(ctx, "Blacklist Crew",
		shared.Field("Group", groupLabel(groupID, group)),
		shared.Field("Link", groupURL(groupID)),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Blacklisted **%s**", groupLabel(groupID, group)), res))
}

// createRemoveCrewBlacklistCommand creates the /game removecrewblacklist subcommand
func createRemoveCrewBlacklistCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"removecrewblacklist",
		"Remove a Roblox group from the blacklist",
		"game",
		d.Bind(removeCrewBlacklistHandler),
	).WithOptions(groupOption()).WithRank(models.RankOwner)
}

func removeCrewBlacklistHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	groupID := ctx.GetStringOption("groupid")
	res, err := d.Service.RemoveGroupBlacklist(ctx.Context(), groupID)
	if err != nil {
		return err
	}
	if res.Affected == 0 {
		return ctx.Respond(fmt.Sprintf("❌ Group %s is not blacklisted.", groupID))
	}

	d.LogCommand(ctx, "Remove Crew Blacklist", shared.Field("Group ID", groupID))
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Removed group %s from the blacklist", groupID), res))
}

// createBlacklistedCrewsCommand creates the /game blacklistedcrews subcommand
func createBlacklistedCrewsCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"blacklistedcrews",
		"List the blacklisted Roblox groups",
		"game",
		d.Bind(blacklistedCrewsHandler),
	).WithRank(models.RankOwner)
}

func blacklistedCrewsHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	groups, err := d.Service.BlacklistedGroups(ctx.Context())
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return ctx.Respond("ℹ️ No groups are blacklisted.")
	}

	infos := make(map[string]*roblox.Group, len(groups))
	for _, g := range groups {
		infos[g.GroupID] = d.Roblox.GroupInfo(ctx.Context(), g.GroupID)
	}
	return ctx.RespondEmbed(crewsEmbed(groups, infos))
}

func groupLabel(id string, g *roblox.Group) string {
	if g == nil || g.Name == "" {
		return "Group " + id
	}
	return g.Name
}

func crewsEmbed(groups []models.BlacklistedGroup, infos map[string]*roblox.Group) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Blacklisted Crews",
		Description: fmt.Sprintf("Total: **%d**", len(groups)),
		Color:       shared.ColorDanger,
		Footer:      shared.Footer(),
	}
	for i, g := range groups {
		if i == 25 {
			embed.Footer.Text = fmt.Sprintf("Showing 25 of %d groups", len(groups))
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: groupLabel(g.GroupID, infos[g.GroupID]),
			Value: fmt.Sprintf("**ID:** %s\n**By:** %s\n**Date:** %s\n%s",
				g.GroupID, shared.Actor(g.IssuedBy), shared.Timestamp(g.IssuedAt), groupURL(g.GroupID)),
		})
	}
	return embed
}
