package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/bwmarrin/discordgo"
)

// maxDescription keeps the profile description inside the embed field limit
const maxDescription = 1000

// createWhoisCommand creates the /mod whois subcommand
func createWhoisCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"whois",
		"Show the Roblox profile of a player",
		"mod",
		d.Bind(whoisHandler),
	).WithOptions(
		shared.PlayerOption(),
	).WithRank(models.RankModerator)
}

func whoisHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	_, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}

	details := d.Roblox.UserDetails(ctx.Context(), player.ID)
	if details == nil {
		return ctx.Respond("❌ Could not load that Roblox profile.")
	}

	embed := whoisEmbed(details)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: d.Roblox.Thumbnail(ctx.Context(), player.ID)}
	return ctx.RespondEmbed(embed)
}

func whoisEmbed(u *roblox.UserDetails) *discordgo.MessageEmbed {
	description := u.Description
	if len(description) > maxDescription {
		description = description[:maxDescription] + "..."
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("👤 %s", u.DisplayLabel()),
		URL:   profileURL(u.ID),
		Color: shared.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			shared.InlineField("User ID", u.IDString()),
			shared.InlineField("Display Name", u.DisplayName),
			shared.InlineField("Username", u.Name),
			shared.Field("Description", description),
			shared.InlineField("Friends", fmt.Sprintf("%d", u.FriendCount)),
			shared.InlineField("Followers", fmt.Sprintf("%d", u.FollowerCount)),
			shared.InlineField("Following", fmt.Sprintf("%d", u.FollowingCount)),
			shared.Field("Account Created", shared.Timestamp(u.Created)),
			shared.Field("Profile", profileURL(u.ID)),
		},
		Footer: shared.Footer(),
	}
}

func profileURL(id int64) string {
	return fmt.Sprintf("https://www.roblox.com/users/%d/profile", id)
}
