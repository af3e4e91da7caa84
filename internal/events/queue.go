package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/mqtt"
	"github.com/bwmarrin/discordgo"
)

// Subscriber is the part of the MQTT client the queue events need
type Subscriber interface {
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// QueueEvents forwards the queue service notifications to the logs channel
type QueueEvents struct {
	audit  *discord.AuditLog
	router *mqtt.Router
}

// NewQueueEvents wires the queue topic handlers
func NewQueueEvents(audit *discord.AuditLog) *QueueEvents {
	q := &QueueEvents{audit: audit, router: mqtt.NewRouter()}
	q.router.Handle(mqtt.TopicCommandsExecuted, q.onExecuted)
	q.router.Handle(mqtt.TopicBansExpired, q.onBansExpired)
	return q
}

// Subscribe listens on every queue topic. A nil subscriber leaves the
// notifications off.
func (q *QueueEvents) Subscribe(sub Subscriber) error {
	if sub == nil {
		return nil
	}
	return sub.Subscribe(mqtt.TopicRoot, func(topic string, payload []byte) {
		q.router.Dispatch(topic, payload)
	})
}

func (q *QueueEvents) onExecuted(_ string, payload []byte) {
	ev, err := mqtt.DecodeCommandEvent(payload)
	if err != nil {
		logger.Warn("Malformed command event: "+err.Error(), "QueueEvents")
		return
	}
	logger.Debug(fmt.Sprintf("Command #%d executed in game", ev.CommandID), "QueueEvents")
	q.audit.SendChannel(executedEmbed(ev))
}

func (q *QueueEvents) onBansExpired(_ string, payload []byte) {
	ev, err := mqtt.DecodeBansExpired(payload)
	if err != nil {
		logger.Warn("Malformed bans expired event: "+err.Error(), "QueueEvents")
		return
	}
	if len(ev.UserIDs) == 0 {
		return
	}
	q.audit.SendChannel(expiredEmbed(ev))
}

func expiredEmbed(ev mqtt.BansExpiredEvent) *discordgo.MessageEmbed {
	at := time.UnixMilli(ev.Timestamp)
	return &discordgo.MessageEmbed{
		Title:       "⏰ Temporary Bans Expired",
		Description: fmt.Sprintf("%d ban(s) lifted automatically", len(ev.UserIDs)),
		Color:       0x00FF00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User IDs", Value: joinIDs(ev.UserIDs, maxFieldValue)},
			{Name: "Timestamp", Value: fmt.Sprintf("<t:%d:F>", at.Unix())},
		},
		Timestamp: at.Format(time.RFC3339),
	}
}

func executedEmbed(ev mqtt.CommandEvent) *discordgo.MessageEmbed {
	at := time.UnixMilli(ev.Timestamp)
	embed := &discordgo.MessageEmbed{
		Title:       "✅ Command Executed",
		Description: fmt.Sprintf("Command #%d was executed in game", ev.CommandID),
		Color:       0x3498DB,
		Timestamp:   at.Format(time.RFC3339),
	}
	if ev.Instance != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Instance", Value: ev.Instance, Inline: true})
	}
	return embed
}

// maxFieldValue is Discord's limit for an embed field value
const maxFieldValue = 1024

// joinIDs joins ids with ", " and cuts the list so the result, including
// the "+N more" suffix, stays within limit characters.
func joinIDs(ids []string, limit int) string {
	full := strings.Join(ids, ", ")
	if len(full) <= limit {
		return full
	}

	var b strings.Builder
	for i, id := range ids {
		rest := len(ids) - i
		suffix := fmt.Sprintf(" +%d more", rest)
		next := id
		if i > 0 {
			next = ", " + id
		}
		if b.Len()+len(next)+len(fmt.Sprintf(" +%d more", rest-1)) > limit {
			return strings.TrimSpace(b.String() + suffix)
		}
		b.WriteString(next)
	}
	return b.String()
}
