package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/goccy/go-json"
)

// Topics published by the queue process
const (
	TopicRoot             = "modrelay/#"
	TopicCommandsEnqueued = "modrelay/commands/enqueued"
	TopicCommandsExecuted = "modrelay/commands/executed"
	TopicBansExpired      = "modrelay/bans/expired"
)

// CommandEvent is published when a command is enqueued or executed
type CommandEvent struct {
	CommandID int64         `json:"commandId"`
	Action    models.Action `json:"action,omitempty"`
	Instance  string        `json:"instance,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// BansExpiredEvent is published after the queue sweeper lifted bans
type BansExpiredEvent struct {
	UserIDs   []string `json:"userIds"`
	Instance  string   `json:"instance,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Publisher is the part of Client the notifier needs
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Notifier publishes queue events. Publish failures are logged and dropped.
type Notifier struct {
	pub      Publisher
	instance string
	now      func() time.Time
}

// NewNotifier creates a Notifier. A nil publisher yields a no-op notifier.
func NewNotifier(pub Publisher, instance string) *Notifier {
	return &Notifier{pub: pub, instance: instance, now: time.Now}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.pub != nil
}

func (n *Notifier) publish(topic string, payload interface{}) {
	go func() {
		defer errors.RecoverMiddleware()()
		if err := n.pub.Publish(topic, payload); err != nil {
			logger.Warn(fmt.Sprintf("Could not publish %s: %v", topic, err), "MQTT")
		}
	}()
}

// CommandEnqueued announces a new pending command
func (n *Notifier) CommandEnqueued(id int64, action models.Action) {
	if !n.enabled() {
		return
	}
	n.publish(TopicCommandsEnqueued, CommandEvent{
		CommandID: id,
		Action:    action,
		Instance:  n.instance,
		Timestamp: n.now().UnixMilli(),
	})
}

// CommandExecuted announces an acknowledged command
func (n *Notifier) CommandExecuted(id int64) {
	if !n.enabled() {
		return
	}
	n.publish(TopicCommandsExecuted, CommandEvent{
		CommandID: id,
		Instance:  n.instance,
		Timestamp: n.now().UnixMilli(),
	})
}

// BansExpired announces the bans removed by a sweep
func (n *Notifier) BansExpired(bans []models.Ban) {
	if !n.enabled() || len(bans) == 0 {
		return
	}
	ids := make([]string, 0, len(bans))
	for _, b := range bans {
		ids = append(ids, b.SubjectID)
	}
	n.publish(TopicBansExpired, BansExpiredEvent{
		UserIDs:   ids,
		Instance:  n.instance,
		Timestamp: n.now().UnixMilli(),
	})
}

// Handler consumes a message routed by a Router
type Handler func(topic string, payload []byte)

type route struct {
	pattern string
	handler Handler
}

// Router dispatches messages from a single wildcard subscription to the
// handlers whose pattern matches the topic.
type Router struct {
	mu     sync.RWMutex
	routes []route
}

// NewRouter creates an empty Router
func NewRouter() *Router {
	return &Router{}
}

// Handle registers handler for pattern. Patterns use MQTT wildcards.
func (r *Router) Handle(pattern string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{pattern: pattern, handler: handler})
}

// Dispatch runs every matching handler and returns how many ran
func (r *Router) Dispatch(topic string, payload []byte) int {
	r.mu.RLock()
	matched := make([]Handler, 0, len(r.routes))
	for _, rt := range r.routes {
		if topicMatch(rt.pattern, topic) {
			matched = append(matched, rt.handler)
		}
	}
	r.mu.RUnlock()

	for _, h := range matched {
		func() {
			defer errors.RecoverMiddleware()()
			h(topic, payload)
		}()
	}
	return len(matched)
}

// DecodeCommandEvent parses a command event payload
func DecodeCommandEvent(payload []byte) (CommandEvent, error) {
	var ev CommandEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}

// DecodeBansExpired parses a bans expired payload
func DecodeBansExpired(payload []byte) (BansExpiredEvent, error) {
	var ev BansExpiredEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}
