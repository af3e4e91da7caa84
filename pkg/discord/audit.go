package discord

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// AuditLog posts embeds to the logs channel and to the owner's DMs. Delivery
// failures are logged and dropped.
type AuditLog struct {
	session   *discordgo.Session
	channelID string
	ownerID   string

	mu        sync.Mutex
	dmChannel string
}

// NewAuditLog creates an AuditLog. Either target may be empty.
func NewAuditLog(session *discordgo.Session, channelID, ownerID string) *AuditLog {
	return &AuditLog{session: session, channelID: channelID, ownerID: ownerID}
}

// Send posts embed to every configured target
func (a *AuditLog) Send(embed *discordgo.MessageEmbed) {
	if a == nil || a.session == nil {
		return
	}
	a.SendChannel(embed)
	a.SendOwner(embed)
}

// SendChannel posts embed to the logs channel only
func (a *AuditLog) SendChannel(embed *discordgo.MessageEmbed) {
	if a == nil || a.session == nil || a.channelID == "" {
		return
	}
	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		logger.Debug(fmt.Sprintf("Could not post to logs channel %s: %v", a.channelID, err), "AuditLog")
	}
}

// SendOwner sends embed to the owner's DMs only
func (a *AuditLog) SendOwner(embed *discordgo.MessageEmbed) {
	if a == nil || a.session == nil || a.ownerID == "" {
		return
	}
	channelID, err := a.ownerChannel()
	if err != nil {
		logger.Debug(fmt.Sprintf("Could not open DM with owner: %v", err), "AuditLog")
		return
	}
	if _, err := a.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		logger.Debug(fmt.Sprintf("Could not DM owner: %v", err), "AuditLog")
	}
}

func (a *AuditLog) ownerChannel() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dmChannel != "" {
		return a.dmChannel, nil
	}
	ch, err := a.session.UserChannelCreate(a.ownerID)
	if err != nil {
		return "", err
	}
	a.dmChannel = ch.ID
	return a.dmChannel, nil
}
