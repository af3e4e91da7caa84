package mqtt

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"modrelay/#", "modrelay/commands/enqueued", true},
		{"modrelay/#", "modrelay", true},
		{"modrelay/+/executed", "modrelay/commands/executed", true},
		{"modrelay/+/executed", "modrelay/commands/enqueued", false},
		{"modrelay/commands/enqueued", "modrelay/commands/enqueued", true},
		{"modrelay/commands", "modrelay/commands/enqueued", false},
		{"modrelay/commands/enqueued/extra", "modrelay/commands/enqueued", false},
		{"+", "modrelay", true},
		{"+", "modrelay/bans", false},
	}

	for _, tt := range tests {
		if got := topicMatch(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("topicMatch(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	var got []string
	r.Handle(TopicCommandsExecuted, func(topic string, _ []byte) { got = append(got, "executed:"+topic) })
	r.Handle("modrelay/bans/+", func(topic string, _ []byte) { got = append(got, "bans:"+topic) })
	r.Handle("modrelay/#", func(topic string, _ []byte) { got = append(got, "all:"+topic) })

	assert.Equal(t, 2, r.Dispatch(TopicCommandsExecuted, nil))
	assert.Equal(t, 2, r.Dispatch(TopicBansExpired, nil))
	assert.Equal(t, 0, r.Dispatch("other/topic", nil))

	assert.Equal(t, []string{
		"executed:" + TopicCommandsExecuted,
		"all:" + TopicCommandsExecuted,
		"bans:" + TopicBansExpired,
		"all:" + TopicBansExpired,
	}, got)
}

func TestRouterSurvivesPanickingHandler(t *testing.T) {
	r := NewRouter()
	ran := false
	r.Handle("#", func(string, []byte) { panic("boom") })
	r.Handle("#", func(string, []byte) { ran = true })

	assert.Equal(t, 2, r.Dispatch("x", nil))
	assert.True(t, ran)
}

type published struct {
	topic   string
	payload []byte
}

type chanPublisher chan published

func (c chanPublisher) Publish(topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c <- published{topic: topic, payload: b}
	return nil
}

func receive(t *testing.T, c chanPublisher) published {
	t.Helper()
	select {
	case p := <-c:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("nothing published")
		return published{}
	}
}

func TestNotifierPublishesEvents(t *testing.T) {
	pub := make(chanPublisher, 4)
	n := NewNotifier(pub, "queue-1")
	n.now = func() time.Time { return time.UnixMilli(42) }

	n.CommandEnqueued(7, models.ActionBan)
	p := receive(t, pub)
	assert.Equal(t, TopicCommandsEnqueued, p.topic)
	ev, err := DecodeCommandEvent(p.payload)
	require.NoError(t, err)
	assert.Equal(t, CommandEvent{CommandID: 7, Action: models.ActionBan, Instance: "queue-1", Timestamp: 42}, ev)

	n.CommandExecuted(7)
	p = receive(t, pub)
	assert.Equal(t, TopicCommandsExecuted, p.topic)

	n.BansExpired(nil)
	n.BansExpired([]models.Ban{{SubjectID: "1"}, {SubjectID: "2"}})
	p = receive(t, pub)
	assert.Equal(t, TopicBansExpired, p.topic)
	expired, err := DecodeBansExpired(p.payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, expired.UserIDs)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	n.CommandEnqueued(1, models.ActionKick)
	NewNotifier(nil, "").CommandExecuted(1)
}

func TestSubscriptionsRenewedOnConnect(t *testing.T) {
	c := &Client{subs: make(map[string]paho.MessageHandler)}
	noop := func(string, []byte) {}

	// offline subscriptions are only recorded
	require.NoError(t, c.Subscribe(TopicRoot, noop))
	require.NoError(t, c.Subscribe(TopicBansExpired, noop))
	require.NoError(t, c.Subscribe("modrelay/other", noop))

	var renewed []string
	c.resubscribe(func(topic string, cb paho.MessageHandler) error {
		assert.NotNil(t, cb)
		renewed = append(renewed, topic)
		return nil
	})
	sort.Strings(renewed)
	assert.Equal(t, []string{TopicRoot, TopicBansExpired, "modrelay/other"}, renewed)

	// a failed renewal does not stop the others
	calls := 0
	c.resubscribe(func(topic string, _ paho.MessageHandler) error {
		calls++
		if topic == TopicRoot {
			return errors.New("not authorized")
		}
		return nil
	})
	assert.Equal(t, 3, calls)
}
