// Package main is the entry point of the moderation bot. It initializes all
// systems and starts the Discord client that feeds the command queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/ModRelayGo/internal/commands"
	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/internal/events"
	"github.com/PancyStudios/ModRelayGo/pkg/config"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/ledger"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
	"github.com/PancyStudios/ModRelayGo/pkg/mqtt"
	"github.com/PancyStudios/ModRelayGo/pkg/relay"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/PancyStudios/ModRelayGo/pkg/scheduler"
)

// startupSweepDelay lets the process settle before the first expired ban sweep
const startupSweepDelay = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting ModRelay bot...", "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init("ModRelayBot", cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	// Open the punishment ledger
	store, err := ledger.Open(ledger.Config{
		Driver:   cfg.LedgerDriver,
		Path:     cfg.LedgerPath,
		MongoURL: cfg.MongoDBURL,
		DBName:   cfg.DBName,
	})
	if store == nil {
		logger.Critical(fmt.Sprintf("Error opening ledger: %v", err), "Main")
		os.Exit(1)
	}
	if err != nil {
		// Mongo keeps reconnecting in the background
		logger.Error(fmt.Sprintf("Error connecting to ledger: %v", err), "Main")
	}
	defer store.Close()

	relayClient := relay.New(cfg.ModQueueURL, cfg.SecretKey)
	robloxClient := roblox.New(roblox.ProxyEndpoints(cfg.RobloxProxyDomain), nil)

	service := moderation.NewService(store, relayClient, moderation.Options{
		OwnerID:      cfg.BotOwnerID,
		RemovalOrder: moderation.ParseRemovalOrder(cfg.StrikeRemovalOrder),
		PlaceID:      cfg.PlaceID,
		UniverseID:   cfg.UniverseID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := service.Bootstrap(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error bootstrapping ledger: %v", err), "Main")
	}
	cancel()

	// Background jobs
	jobs := scheduler.New()
	defer jobs.Stop()

	sweeper := moderation.NewSweeper(store, relayClient, nil)
	jobs.AddDelay("expired-bans-startup", startupSweepDelay, sweeper.Run)
	jobs.AddTicker("expired-bans", cfg.SweepInterval, sweeper.Run)

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}
	discordClient.Authorizer = service.Authorizer()

	audit := discord.NewAuditLog(discordClient.Session, cfg.LogsChannelID, cfg.BotOwnerID)

	// Initialize MQTT, queue notices are optional
	if cfg.MQTTEnabled() {
		mqttClient := mqtt.Init(mqtt.Options{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: mqttClientID(cfg),
		})
		defer mqttClient.Destroy()

		if err := events.NewQueueEvents(audit).Subscribe(mqttClient); err != nil {
			logger.Warn(fmt.Sprintf("Error subscribing to queue events: %v", err), "Main")
		}
	}

	deps := &shared.Deps{
		Service: service,
		Roblox:  robloxClient,
		Relay:   relayClient,
		Audit:   audit,
	}

	// Register commands using the commands package
	commands.RegisterAll(discordClient, deps)

	stats := events.NewGameStats(discordClient.Session, robloxClient, service, jobs, events.StatsChannels{
		VisitsChannelID:  cfg.VisitsChannelID,
		PlayingChannelID: cfg.PlayingChannelID,
		StatsChannelID:   cfg.StatsChannelID,
	})

	// Register events using the events package
	events.RegisterAll(discordClient, stats)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Warn(fmt.Sprintf("Error stopping Discord client: %v", err), "Main")
		}
	}()

	logger.Success("ModRelay bot started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down ModRelay bot...", "Main")
}

func mqttClientID(cfg *config.Config) string {
	if cfg.IsProd() {
		return "modrelay_bot"
	}
	return "modrelay_bot_canary"
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
