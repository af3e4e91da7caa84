// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/pkg/config"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Command registered: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands. Each subcommand
// is stored as "name.sub".
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// ApplicationCommands returns the commands that will be registered
func (ch *CommandHandler) ApplicationCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// targetGuild is the guild commands are registered in. Outside production the
// dev guild is used so changes show up immediately.
func targetGuild(cfg *config.Config) string {
	if cfg.IsProd() {
		return ""
	}
	return cfg.DevGuildID
}

// RegisterCommands replaces the registered slash commands with the current set
func (ch *CommandHandler) RegisterCommands() {
	guildID := targetGuild(config.Get())
	scope := "global"
	if guildID != "" {
		scope = "guild " + guildID
	}

	logger.Info(fmt.Sprintf("🔄 Registering %d commands (%s)...", len(ch.slashCommands), scope), "CommandHandler")
	if err := ch.SyncCommands(guildID); err != nil {
		logger.Error("Error registering commands: "+err.Error(), "CommandHandler")
		return
	}
	logger.Success("✅ Commands registered.", "CommandHandler")
}

// SyncCommands overwrites the commands of guildID (global when empty), so
// stale commands are removed in the same call
func (ch *CommandHandler) SyncCommands(guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), guildID, ch.slashCommands)
	return err
}

// ListGlobalCommands lists the commands registered globally
func (ch *CommandHandler) ListGlobalCommands() ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), "")
}

// ListGuildCommands lists the commands registered in guildID
func (ch *CommandHandler) ListGuildCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), guildID)
}

// UnregisterCommands removes all registered commands of guildID (global when empty)
func (ch *CommandHandler) UnregisterCommands(guildID string) error {
	commands, err := ch.client.Session.ApplicationCommands(ch.appID(), guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		err := ch.client.Session.ApplicationCommandDelete(ch.appID(), guildID, cmd.ID)
		if err != nil {
			logger.Error("Error deleting command "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success(fmt.Sprintf("%d commands removed.", len(commands)), "CommandHandler")
	return nil
}

func (ch *CommandHandler) appID() string {
	return ch.client.Session.State.User.ID
}
