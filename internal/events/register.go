// Package events provides a registry for organizing bot events
package events

import (
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, stats *GameStats) {
	logger.System("📋 Registering bot events...", "Events")

	// Ready event (bot startup, starts the game stats updaters)
	RegisterReadyEvent(client, stats)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Gateway disconnect/resume
	RegisterShardEvents(client)

	logger.Success("✅ All events registered", "Events")
}
