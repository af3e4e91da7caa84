package game

import (
	"context"
	"fmt"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
)

type cashFunc func(ctx context.Context, p moderation.Player, amount int64) (moderation.Result, error)

// cashCommand describes one of the three cash subcommands
type cashCommand struct {
	name        string
	description string
	rank        models.Rank
	action      string
	verb        string
	run         func(s *moderation.Service) cashFunc
}

var cashCommands = []cashCommand{
	{
		name:        "addcash",
		description: "Give cash to a player",
		rank:        models.RankAdmin,
		action:      "Add Cash",
		verb:        "Added %d cash to **%s**",
		run:         func(s *moderation.Service) cashFunc { return s.AddCash },
	},
	{
		name:        "removecash",
		description: "Take cash from a player",
		rank:        models.RankAdmin,
		action:      "Remove Cash",
		verb:        "Removed %d cash from **%s**",
		run:         func(s *moderation.Service) cashFunc { return s.RemoveCash },
	},
	{
		name:        "setcash",
		description: "Set the cash of a player",
		rank:        models.RankManager,
		action:      "Set Cash",
		verb:        "Set the cash to %d for **%s**",
		run:         func(s *moderation.Service) cashFunc { return s.SetCash },
	},
}

func createCashCommand(d *shared.Deps, c cashCommand) *discord.Command {
	return discord.NewCommand(
		c.name,
		c.description,
		"game",
		d.Bind(func(ctx *discord.CommandContext, deps *shared.Deps) error {
			return cashHandler(ctx, deps, c)
		}),
	).WithOptions(
		shared.PlayerOption(),
		shared.AmountOption(),
	).WithRank(c.rank)
}

func createAddCashCommand(d *shared.Deps) *discord.Command {
	return createCashCommand(d, cashCommands[0])
}

func createRemoveCashCommand(d *shared.Deps) *discord.Command {
	return createCashCommand(d, cashCommands[1])
}

func createSetCashCommand(d *shared.Deps) *discord.Command {
	return createCashCommand(d, cashCommands[2])
}

func cashHandler(ctx *discord.CommandContext, d *shared.Deps, c cashCommand) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	user, player, err := d.ResolvePlayer(ctx, ctx.GetStringOption("player"))
	if err != nil {
		return err
	}
	amount := ctx.GetIntOption("amount")

	res, err := c.run(d.Service)(ctx.Context(), player, amount)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, c.action,
		shared.Field("Player", shared.PlayerLabel(user)),
		shared.Field("Amount", fmt.Sprintf("%d", amount)),
	)
	return ctx.Respond(shared.WithRelayNote("✅ "+fmt.Sprintf(c.verb, amount, user.DisplayLabel()), res))
}
