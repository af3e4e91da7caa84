package game

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// createChangePlaceIDCommand creates the /game changeplaceid subcommand
func createChangePlaceIDCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"changeplaceid",
		"Change the game place ID",
		"game",
		d.Bind(changePlaceIDHandler),
	).WithOptions(
		shared.StringOption("placeid", "New place ID", true),
	).WithRank(models.RankOwner)
}

func changePlaceIDHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	old, err := d.Service.PlaceID(ctx.Context())
	if err != nil {
		return err
	}
	id := ctx.GetStringOption("placeid")
	if err := d.Service.SetPlaceID(ctx.Context(), id); err != nil {
		return err
	}

	d.LogCommand(ctx, "Change Place ID",
		shared.Field("Old Place ID", old),
		shared.Field("New Place ID", id),
	)
	return ctx.Respond(fmt.Sprintf("✅ Place ID changed from %s to **%s**", old, id))
}

// createChangeUniverseIDCommand creates the /game changeuniverseid subcommand
func createChangeUniverseIDCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"changeuniverseid",
		"Change the game universe ID",
		"game",
		d.Bind(changeUniverseIDHandler),
	).WithOptions(
		shared.StringOption("universeid", "New universe ID", true),
	).WithRank(models.RankOwner)
}

func changeUniverseIDHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	old, err := d.Service.UniverseID(ctx.Context())
	if err != nil {
		return err
	}
	id := ctx.GetStringOption("universeid")
	if err := d.Service.SetUniverseID(ctx.Context(), id); err != nil {
		return err
	}

	d.LogCommand(ctx, "Change Universe ID",
		shared.Field("Old Universe ID", old),
		shared.Field("New Universe ID", id),
	)
	return ctx.Respond(fmt.Sprintf("✅ Universe ID changed from %s to **%s**", old, id))
}

// createCheckCCUCommand creates the /game check-ccu subcommand
func createCheckCCUCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"check-ccu",
		"Show how many players are currently playing",
		"game",
		d.Bind(checkCCUHandler),
	).WithRank(models.RankModerator)
}

func checkCCUHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	universeID, err := d.Service.UniverseID(ctx.Context())
	if err != nil {
		return err
	}
	stats := d.Roblox.GameStats(ctx.Context(), universeID)
	if stats == nil {
		return ctx.Respond("❌ Could not fetch the game stats.")
	}
	return ctx.Respond(fmt.Sprintf("🎮 **%d** players are currently playing", stats.Playing))
}
