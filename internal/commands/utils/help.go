package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Show the available commands",
		"utils",
		helpHandler,
	)
}

// helpHandler lists every registered subcommand with its required rank
func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(helpText(ctx.Client.Commands.All()))
}

// helpText renders commands keyed "group.sub", sorted by key
func helpText(cmds map[string]*discord.Command) string {
	keys := make([]string, 0, len(cmds))
	for k := range cmds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("📖 **ModRelay Help**\n")

	group := ""
	for _, key := range keys {
		cmd := cmds[key]
		parent, _, _ := strings.Cut(key, ".")
		if parent != group {
			group = parent
			fmt.Fprintf(&b, "\n**/%s**\n", group)
		}

		fmt.Fprintf(&b, "• `/%s` - %s", strings.ReplaceAll(key, ".", " "), cmd.Description)
		if cmd.RequiredRank != "" {
			fmt.Fprintf(&b, " (%s+)", cmd.RequiredRank.Title())
		}
		b.WriteString("\n")
	}
	return b.String()
}
