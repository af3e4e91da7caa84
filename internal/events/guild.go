package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers the guild join and leave handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildCreate)
	client.Session.AddHandler(onGuildDelete)
}

// onGuildCreate is called for every guild on connect and when the bot joins
// a server. Only fresh joins are logged.
func onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return
	}
	logger.Info(fmt.Sprintf("➕ Bot added to server: %s (ID: %s, %d members)", g.Name, g.ID, g.MemberCount), "Guild")
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Server %s became unavailable", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removed from server ID: %s", g.ID), "Guild")
}
