// Package main is the entry point of the command queue service. It serves the
// authenticated queue API polled by the game server and runs the expiration
// and retention jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/config"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/mqtt"
	"github.com/PancyStudios/ModRelayGo/pkg/queue"
	"github.com/PancyStudios/ModRelayGo/pkg/scheduler"
	"github.com/PancyStudios/ModRelayGo/pkg/web"
	"github.com/google/uuid"
)

// startupSweepDelay lets the process settle before the first expired ban sweep
const startupSweepDelay = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting ModRelay queue service...", "Main")
	if cfg.SecretKey == "" {
		logger.Warn("SECRET_KEY is empty, every authenticated request will be rejected", "Main")
	}

	var server *web.Server
	errors.Init("ModQueue", cfg.ErrorWebhook, func() {
		if server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}
	})

	store, err := queue.Open(cfg.QueuePath)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error opening queue database: %v", err), "Main")
		os.Exit(1)
	}
	defer store.Close()

	instance := uuid.New().String()

	// MQTT is optional, a nil publisher disables the notifications
	var pub mqtt.Publisher
	if cfg.MQTTEnabled() {
		client := mqtt.Init(mqtt.Options{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: "modqueue",
		})
		defer client.Destroy()
		pub = client
	}
	notifier := mqtt.NewNotifier(pub, instance)

	server = web.Init(cfg.LogsWebServerHook)
	web.SetupQueueRoutes(server, web.RoutesConfig{
		Store:     store,
		Auth:      web.NewAuthenticator(cfg.SecretKey),
		Notifier:  notifier,
		Instance:  instance,
		BatchSize: cfg.BatchSize,
	})
	server.StartAsync(cfg.Port)

	jobs := scheduler.New()
	defer jobs.Stop()

	sweep := func(ctx context.Context) {
		expired, err := store.SweepExpiredBans(ctx)
		if err != nil {
			logger.Error(fmt.Sprintf("Expired ban sweep failed: %v", err), "Sweeper")
			return
		}
		if len(expired) > 0 {
			logger.Info(fmt.Sprintf("Lifted %d expired bans", len(expired)), "Sweeper")
			notifier.BansExpired(expired)
		}
	}
	// catch up on bans that expired while the service was down
	jobs.AddDelay("expired-bans-startup", startupSweepDelay, sweep)
	jobs.AddTicker("expired-bans", cfg.SweepInterval, sweep)

	jobs.AddTicker("retention", cfg.RetentionInterval, func(ctx context.Context) {
		n, err := store.PurgeExecutedOlderThan(ctx, cfg.RetentionWindow)
		if err != nil {
			logger.Error(fmt.Sprintf("Retention purge failed: %v", err), "Retention")
			return
		}
		if n > 0 {
			logger.Info(fmt.Sprintf("Purged %d executed commands", n), "Retention")
		}
	})

	logger.Success(fmt.Sprintf("Queue service started (instance %s)", instance), "Main")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down queue service...", "Main")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error shutting down web server: %v", err), "Main")
	}
}
