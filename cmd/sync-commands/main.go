// Package main provides a utility to sync Discord slash commands.
// This removes stale commands from Discord and ensures only currently-defined commands are registered.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List all registered commands (global and guild)
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
//	-sync           Sync commands (remove stale, register current) - default behavior
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/ModRelayGo/internal/commands"
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/config"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	syncCmd := flag.Bool("sync", false, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting command sync utility...", "SyncCommands")

	// Initialize Discord client
	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	// Open connection to Discord
	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), "SyncCommands")
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Connected to Discord", "SyncCommands")

	// Register commands to know what we should have. Only the definitions are
	// needed, so the handlers get no services.
	commands.RegisterAll(client, &shared.Deps{})

	// Execute the requested action
	switch {
	case *listCmd:
		listCommands(client, *guildID)
	case *cleanCmd:
		cleanCommands(client, *guildID)
	case *syncCmd:
		syncCommands(client, *guildID)
	default:
		syncCommands(client, *guildID)
	}

	logger.Success("Operation completed", "SyncCommands")
}

func scope(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return "guild " + guildID
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info(fmt.Sprintf("📋 Listing registered commands (%s)...", scope(guildID)), "SyncCommands")

	var cmds []*discordgo.ApplicationCommand
	var err error
	if guildID != "" {
		cmds, err = client.CommandHandler.ListGuildCommands(guildID)
	} else {
		cmds, err = client.CommandHandler.ListGlobalCommands()
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Error fetching commands: %v", err), "SyncCommands")
		return
	}

	if len(cmds) == 0 {
		logger.Info("No commands registered", "SyncCommands")
		return
	}

	logger.Info(fmt.Sprintf("Commands found: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
	}
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info(fmt.Sprintf("🧹 Removing every command (%s)...", scope(guildID)), "SyncCommands")

	if err := client.CommandHandler.UnregisterCommands(guildID); err != nil {
		logger.Error(fmt.Sprintf("Error removing commands: %v", err), "SyncCommands")
		return
	}
	logger.Success("✅ All commands removed", "SyncCommands")
}

// syncCommands replaces the registered commands with the current set
func syncCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info(fmt.Sprintf("🔄 Syncing %d commands (%s)...", len(client.CommandHandler.ApplicationCommands()), scope(guildID)), "SyncCommands")

	if err := client.CommandHandler.SyncCommands(guildID); err != nil {
		logger.Error(fmt.Sprintf("Error syncing commands: %v", err), "SyncCommands")
		return
	}
	logger.Success("✅ Commands synced", "SyncCommands")
}
