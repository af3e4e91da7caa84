package events

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PancyStudios/ModRelayGo/pkg/mqtt"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestone(t *testing.T) {
	tests := []struct {
		visits int64
		want   int64
	}{
		{0, 0},
		{1, 10000},
		{9999, 10000},
		{10000, 10000},
		{10001, 20000},
		{1234567, 1240000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Milestone(tt.visits), "visits=%d", tt.visits)
	}
}

func TestStatsTexts(t *testing.T) {
	g := NewGameStats(nil, nil, nil, nil, StatsChannels{})
	s := &roblox.GameStats{Playing: 1523, Visits: 1234567}

	assert.Equal(t, "1,523 players are currently playing", g.presenceText(s))
	assert.Equal(t, "👥 Visits: 1,234,567", g.visitsName(s))
	assert.Equal(t, "🎮 Playing: 1,523", g.playingName(s))

	msg := g.statsMessage(s)
	assert.Contains(t, msg, "🎮 Active players: 1,523")
	assert.Contains(t, msg, "🎯 Next milestone: 1,234,567/1,240,000")
	assert.Len(t, strings.Split(msg, "\n"), 9)
}

type fakeUniverse struct{ id string }

func (f fakeUniverse) UniverseID(context.Context) (string, error) { return f.id, nil }

type fakeStats struct{ asked []string }

func (f *fakeStats) GameStats(_ context.Context, universeID string) *roblox.GameStats {
	f.asked = append(f.asked, universeID)
	return &roblox.GameStats{Playing: 1}
}

func TestFetchUsesCurrentUniverse(t *testing.T) {
	src := &fakeStats{}
	g := NewGameStats(nil, src, fakeUniverse{id: "555"}, nil, StatsChannels{})
	require.NotNil(t, g.fetch(context.Background()))
	assert.Equal(t, []string{"555"}, src.asked)

	g = NewGameStats(nil, src, fakeUniverse{}, nil, StatsChannels{})
	assert.Nil(t, g.fetch(context.Background()))
	assert.Len(t, src.asked, 1)
}

type fakeSubscriber struct {
	topic   string
	handler func(topic string, payload []byte)
}

func (f *fakeSubscriber) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	f.topic, f.handler = topic, handler
	return nil
}

func TestQueueEventsSubscribe(t *testing.T) {
	q := NewQueueEvents(nil)
	require.NoError(t, q.Subscribe(nil))

	sub := &fakeSubscriber{}
	require.NoError(t, q.Subscribe(sub))
	assert.Equal(t, mqtt.TopicRoot, sub.topic)

	assert.Equal(t, 1, q.router.Dispatch(mqtt.TopicBansExpired, []byte(`{"userIds":["1","2"],"timestamp":1700000000000}`)))
	assert.Equal(t, 1, q.router.Dispatch(mqtt.TopicCommandsExecuted, []byte(`not json`)))
	assert.Equal(t, 0, q.router.Dispatch(mqtt.TopicCommandsEnqueued, []byte(`{}`)))

	// the subscription handler routes into the same router
	sub.handler(mqtt.TopicBansExpired, []byte(`{"userIds":[]}`))
}

func TestExpiredEmbed(t *testing.T) {
	embed := expiredEmbed(mqtt.BansExpiredEvent{UserIDs: []string{"1", "2"}, Timestamp: 1700000000000})
	assert.Equal(t, "2 ban(s) lifted automatically", embed.Description)
	assert.Equal(t, "1, 2", embed.Fields[0].Value)
	assert.Equal(t, "<t:1700000000:F>", embed.Fields[1].Value)
}

func TestExecutedEmbed(t *testing.T) {
	embed := executedEmbed(mqtt.CommandEvent{CommandID: 7, Instance: "q1", Timestamp: 1700000000000})
	assert.Equal(t, "Command #7 was executed in game", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "q1", embed.Fields[0].Value)

	assert.Empty(t, executedEmbed(mqtt.CommandEvent{CommandID: 8}).Fields)
}

func TestExpiredEmbedCapsLargeBatches(t *testing.T) {
	ids := make([]string, 200)
	for i := range ids {
		ids[i] = fmt.Sprintf("%010d", 1000000000+i)
	}

	embed := expiredEmbed(mqtt.BansExpiredEvent{UserIDs: ids, Timestamp: 1700000000000})
	value := embed.Fields[0].Value
	assert.LessOrEqual(t, len(value), maxFieldValue)
	assert.True(t, strings.HasPrefix(value, "1000000000, 1000000001"))
	assert.Regexp(t, ` \+\d+ more$`, value)
	assert.Equal(t, "200 ban(s) lifted automatically", embed.Description)

	assert.Equal(t, "a, b", joinIDs([]string{"a", "b"}, 4))
	assert.Equal(t, "a +2 more", joinIDs([]string{"a", "bb", "ccc"}, 9))
	assert.Equal(t, "+2 more", joinIDs([]string{"abcdefghij", "b"}, 8))
}
