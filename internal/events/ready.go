// Package events provides event handlers for the bot
package events

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler. The game stats
// updaters start on the first ready event.
func RegisterReadyEvent(client *discord.ExtendedClient, stats *GameStats) {
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Success(fmt.Sprintf("✅ Bot connected: %s", r.User.Username), "Ready")
		logger.Info(fmt.Sprintf("📊 Connected to %d servers", len(r.Guilds)), "Ready")

		if stats != nil {
			stats.Start()
		}
	})
}
