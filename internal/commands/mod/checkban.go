package mod

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/relay"
	"github.com/bwmarrin/discordgo"
)

// createCheckBanCommand creates the /mod checkban subcommand
func createCheckBanCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"checkban",
		"Check if a player is banned",
		"mod",
		d.Bind(checkBanHandler),
	).WithOptions(
		shared.PlayerOption(),
	).WithRank(models.RankModerator)
}

func checkBanHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}

	ban, err := d.Service.CheckBan(ctx.Context(), player.ID)
	if err != nil {
		return err
	}
	mirrored := mirrorState(d.Relay, ctx, player.ID)
	if ban == nil {
		if mirrored == mirrorListed {
			return ctx.Respond(fmt.Sprintf("⚠️ **%s** is not banned here but is still on the game ban list.", user.DisplayLabel()))
		}
		return ctx.Respond(fmt.Sprintf("✅ **%s** is not banned.", user.DisplayLabel()))
	}

	expires := "Permanent"
	if ban.ExpiresAt != nil {
		expires = shared.Timestamp(*ban.ExpiresAt)
	}

	embed := &discordgo.MessageEmbed{
		Title: "🔨 Ban Information",
		Color: shared.ColorDanger,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: d.Roblox.Thumbnail(ctx.Context(), player.ID),
		},
		Fields: []*discordgo.MessageEmbedField{
			shared.InlineField("Player", shared.PlayerLabel(user)),
			shared.InlineField("Banned By", shared.Actor(ban.IssuedBy)),
			shared.Field("Reason", ban.Reason),
			shared.Field("Proof", ban.Proof),
			shared.InlineField("Banned At", shared.Timestamp(ban.IssuedAt)),
			shared.InlineField("Expires", expires),
			shared.InlineField("Game Mirror", mirrored.label()),
		},
		Footer: shared.Footer(),
	}
	return ctx.RespondEmbed(embed)
}

type mirror int

const (
	mirrorUnknown mirror = iota
	mirrorListed
	mirrorMissing
)

func (m mirror) label() string {
	switch m {
	case mirrorListed:
		return "✅ Synced"
	case mirrorMissing:
		return "⚠️ Not on the game ban list"
	}
	return "❔ Queue unreachable"
}

// mirrorState looks the player up in the queue's ban mirror
func mirrorState(r *relay.Client, ctx *discord.CommandContext, subjectID string) mirror {
	if r == nil {
		return mirrorUnknown
	}
	_, err := r.Ban(ctx.Context(), subjectID)
	return mirrorFromErr(err)
}

func mirrorFromErr(err error) mirror {
	switch {
	case err == nil:
		return mirrorListed
	case errors.Is(err, errors.KindNotFound):
		return mirrorMissing
	}
	return mirrorUnknown
}
