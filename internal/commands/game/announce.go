package game

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createAnnounceCommand creates the /game announce subcommand
func createAnnounceCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"announce",
		"Send an announcement to every server",
		"game",
		d.Bind(announceHandler),
	).WithOptions(
		shared.StringOption("message", "Announcement text", true),
	).WithRank(models.RankManager)
}

func announceHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	message := ctx.GetStringOption("message")
	res, err := d.Service.Announce(ctx.Context(), message)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Announce", shared.Field("Message", message))
	return ctx.Respond(shared.WithRelayNote("✅ Announcement sent", res))
}

// createMessageCommand creates the /game message subcommand
func createMessageCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"message",
		"Send a private message to a player",
		"game",
		d.Bind(messageHandler),
	).WithOptions(
		shared.PlayerOption(),
		shared.StringOption("message", "Message text", true),
	).WithRank(models.RankAdmin)
}

func messageHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	message := ctx.GetStringOption("message")

	res, err := d.Service.Message(ctx.Context(), player, message)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Message",
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Message", message),
	)
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Message sent to **%s**", user.DisplayLabel()), res))
}

// createRestartAllServersCommand creates the /game restartallservers subcommand
func createRestartAllServersCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"restartallservers",
		"Restart every game server",
		"game",
		d.Bind(restartAllServersHandler),
	).WithRank(models.RankOwner)
}

func restartAllServersHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	res, err := d.Service.RestartAllServers(ctx.Context())
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Restart All Servers")
	return ctx.Respond(shared.WithRelayNote("✅ All servers will be restarted", res))
}

// createUnbanWaveCommand creates the /game unbanwave subcommand
func createUnbanWaveCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"unbanwave",
		"Lift every active ban",
		"game",
		d.Bind(unbanWaveHandler),
	).WithRank(models.RankOwner)
}

func unbanWaveHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	res, err := d.Service.UnbanWave(ctx.Context(), ctx.User().ID)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Unban Wave", shared.Field("Bans Lifted", fmt.Sprintf("%d", res.Affected)))
	return ctx.Respond(shared.WithRelayNote(fmt.Sprintf("✅ Unban wave complete, %d ban(s) lifted", res.Affected), res))
}
