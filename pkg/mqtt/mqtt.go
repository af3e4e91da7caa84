// Package mqtt publishes and consumes command queue notifications over an
// MQTT broker. Notifications are hints only; consumers still poll the queue.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Options configures the broker connection
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	ClientID string
}

// Client wraps a paho client. Subscriptions are remembered and renewed on
// every (re)connect, since the broker drops them with the clean session.
type Client struct {
	client   mqtt.Client
	clientID string

	mu   sync.Mutex
	subs map[string]mqtt.MessageHandler
}

var (
	communicator *Client
	once         sync.Once
)

// Init initializes the global MQTT client
func Init(opts Options) *Client {
	once.Do(func() {
		communicator = NewClient(opts)
	})
	return communicator
}

// Get returns the global MQTT client, nil when MQTT is disabled
func Get() *Client {
	return communicator
}

// NewClient connects to the broker. A failed first connection is logged and
// retried in the background by paho.
func NewClient(o Options) *Client {
	c := &Client{clientID: o.ClientID, subs: make(map[string]mqtt.MessageHandler)}

	uniqueID := fmt.Sprintf("%s_%s", o.ClientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", o.Host, o.Port)).
		SetClientID(uniqueID).
		SetUsername(o.Username).
		SetPassword(o.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(client mqtt.Client) {
			logger.Success(fmt.Sprintf("Connected to MQTT broker as %s", o.ClientID), "MQTT")
			c.resubscribe(func(topic string, cb mqtt.MessageHandler) error {
				return waitToken(client.Subscribe(topic, 0, cb))
			})
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("MQTT connection lost: %v", err), "MQTT")
		})

	c.client = mqtt.NewClient(opts)

	token := c.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("MQTT connection error: %v", token.Error()), "MQTT")
	}

	return c
}

// Destroy closes the MQTT connection
func (c *Client) Destroy() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		logger.System("MQTT connection closed.", "MQTT")
	} else {
		logger.Warn("MQTT client was not connected, nothing to close.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Publish sends payload as JSON to topic
func (c *Client) Publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := c.client.Publish(topic, 0, false, jsonData)
	token.Wait()
	return token.Error()
}

// Subscribe subscribes to a topic with a message handler. While the broker
// is unreachable the subscription is only recorded and applied on connect.
func (c *Client) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	cb := func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	}

	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()

	if !c.IsConnected() {
		logger.Debug(fmt.Sprintf("Subscription to %s deferred until connected", topic), "MQTT")
		return nil
	}
	return waitToken(c.client.Subscribe(topic, 0, cb))
}

// resubscribe renews every recorded subscription through subscribe
func (c *Client) resubscribe(subscribe func(topic string, cb mqtt.MessageHandler) error) {
	c.mu.Lock()
	subs := make(map[string]mqtt.MessageHandler, len(c.subs))
	for topic, cb := range c.subs {
		subs[topic] = cb
	}
	c.mu.Unlock()

	for topic, cb := range subs {
		if err := subscribe(topic, cb); err != nil {
			logger.Error(fmt.Sprintf("Could not renew subscription to %s: %v", topic, err), "MQTT")
			continue
		}
		logger.Debug(fmt.Sprintf("Subscribed to %s", topic), "MQTT")
	}
}

func waitToken(token mqtt.Token) error {
	token.Wait()
	return token.Error()
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	patternLen := len(patternParts)
	topicLen := len(topicParts)

	for i := 0; i < patternLen; i++ {
		if patternParts[i] == "#" {
			return true
		}

		if i >= topicLen {
			return false
		}

		if patternParts[i] == "+" {
			continue
		}

		if patternParts[i] != topicParts[i] {
			return false
		}
	}

	return patternLen == topicLen
}
