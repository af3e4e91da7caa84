package staff

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func rankOption() *discordgo.ApplicationCommandOption {
	opt := shared.StringOption("rank", "Staff rank", true)
	for _, r := range models.Ranks {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  r.Title(),
			Value: string(r),
		})
	}
	return opt
}

// createWhitelistCommand creates the /staff whitelist subcommand
func createWhitelistCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"whitelist",
		"Add a user to the staff whitelist",
		"staff",
		d.Bind(whitelistHandler),
	).WithOptions(
		shared.UserOption("User to whitelist"),
		rankOption(),
	).WithRank(models.RankOwner)
}

func whitelistHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	target := ctx.GetUserOption("user")
	if target == nil {
		return errors.Validation("whitelist", "user is required")
	}
	rank, ok := models.ParseRank(ctx.GetStringOption("rank"))
	if !ok {
		return errors.Validation("whitelist", "unknown rank %q", ctx.GetStringOption("rank"))
	}

	if err := d.Service.Whitelist(ctx.Context(), ctx.User().ID, target.ID, rank); err != nil {
		return err
	}

	d.LogCommand(ctx, "Whitelist",
		shared.Field("User", fmt.Sprintf("<@%s> (%s)", target.ID, target.Username)),
		shared.Field("Rank", rank.Title()),
	)
	return ctx.Respond(fmt.Sprintf("✅ Successfully whitelisted **%s** as **%s**", target.Username, rank.Title()))
}

// createRemoveWhitelistCommand creates the /staff removewhitelist subcommand
func createRemoveWhitelistCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"removewhitelist",
		"Remove a user from the staff whitelist",
		"staff",
		d.Bind(removeWhitelistHandler),
	).WithOptions(
		shared.UserOption("User to remove"),
	).WithRank(models.RankOwner)
}

func removeWhitelistHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	target := ctx.GetUserOption("user")
	if target == nil {
		return errors.Validation("removewhitelist", "user is required")
	}

	removed, err := d.Service.RemoveWhitelist(ctx.Context(), target.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ctx.Respond(fmt.Sprintf("❌ **%s** is not whitelisted.", target.Username))
	}

	d.LogCommand(ctx, "Remove Whitelist",
		shared.Field("User", fmt.Sprintf("<@%s> (%s)", target.ID, target.Username)),
	)
	return ctx.Respond(fmt.Sprintf("✅ Successfully removed **%s** from the whitelist", target.Username))
}

// createWhitelistedUsersCommand creates the /staff whitelistedusers subcommand
func createWhitelistedUsersCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"whitelistedusers",
		"List every whitelisted staff member",
		"staff",
		d.Bind(whitelistedUsersHandler),
	).WithRank(models.RankOwner)
}

func whitelistedUsersHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	members, err := d.Service.Staff(ctx.Context())
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return ctx.Respond("ℹ️ No staff members are whitelisted.")
	}
	return ctx.RespondEmbed(staffEmbed(members))
}

// staffEmbed groups the whitelist by rank, highest first
func staffEmbed(members []models.StaffMember) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "👥 Whitelisted Staff",
		Description: fmt.Sprintf("Total: **%d**", len(members)),
		Color:       shared.ColorInfo,
		Footer:      shared.Footer(),
	}

	for i := len(models.Ranks) - 1; i >= 0; i-- {
		rank := models.Ranks[i]
		var list string
		for _, m := range members {
			if m.Rank == rank {
				list += fmt.Sprintf("<@%s> (added %s)\n", m.DiscordID, shared.Relative(m.AddedAt))
			}
		}
		if list != "" {
			embed.Fields = append(embed.Fields, shared.Field(rank.Title(), list))
		}
	}
	return embed
}
