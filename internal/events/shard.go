package events

import (
	"fmt"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterShardEvents logs gateway disconnects and resumes
func RegisterShardEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnDisconnect(func(s *discordgo.Session, _ *discordgo.Disconnect) {
		logger.Warn(fmt.Sprintf("🔌 Shard %d disconnected.", s.ShardID), "Shard")
	})
	client.Session.AddHandler(func(s *discordgo.Session, _ *discordgo.Resumed) {
		logger.Success(fmt.Sprintf("✅ Shard %d resumed.", s.ShardID), "Shard")
	})
}
