// Package config provides configuration management for the bot and the queue service.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for both processes
type Config struct {
	// Discord
	BotToken      string
	DevGuildID    string
	BotOwnerID    string
	LogsChannelID string

	// Stats channels, all optional
	VisitsChannelID  string
	PlayingChannelID string
	StatsChannelID   string

	// Queue API
	ModQueueURL string
	SecretKey   string
	QueuePath   string
	BatchSize   int

	// Ledger
	LedgerDriver string
	LedgerPath   string
	MongoDBURL   string
	DBName       string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string

	// Game
	PlaceID           string
	UniverseID        string
	RobloxProxyDomain string

	// Jobs
	SweepInterval      time.Duration
	RetentionInterval  time.Duration
	RetentionWindow    time.Duration
	StrikeRemovalOrder string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Today"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:      getEnv("botToken", ""),
		DevGuildID:    getEnv("devGuildId", ""),
		BotOwnerID:    getEnv("BOT_OWNER_ID", ""),
		LogsChannelID: getEnv("LOGS_CHANNEL_ID", ""),

		VisitsChannelID:  getEnv("VISITS_VC_ID", ""),
		PlayingChannelID: getEnv("PLAYING_VC_ID", ""),
		StatsChannelID:   getEnv("STATS_CHANNEL_ID", ""),

		// Queue API
		ModQueueURL: getEnv("MODQUEUE_URL", "http://localhost:3000"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		QueuePath:   getEnv("QUEUE_PATH", "modqueue.db"),
		BatchSize:   getInt("BATCH_SIZE", 50),

		// Ledger
		LedgerDriver: getEnv("LEDGER_DRIVER", "mongo"),
		LedgerPath:   getEnv("LEDGER_PATH", "moderation.db"),
		MongoDBURL:   getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:       getEnv("dbName", "ModRelay"),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", ""),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port: getEnv("PORT", "3000"),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),

		// Game
		PlaceID:           getEnv("PLACE_ID", ""),
		UniverseID:        getEnv("UNIVERSE_ID", ""),
		RobloxProxyDomain: getEnv("ROBLOX_PROXY_DOMAIN", "roproxy.com"),

		// Jobs
		SweepInterval:      getDuration("SWEEP_INTERVAL", time.Minute),
		RetentionInterval:  getDuration("RETENTION_INTERVAL", time.Hour),
		RetentionWindow:    getDuration("RETENTION_WINDOW", 24*time.Hour),
		StrikeRemovalOrder: getEnv("STRIKE_REMOVAL_ORDER", "newest"),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration ("90s", "1h") and falls back to the default
// when the variable is unset, malformed or not positive.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// getInt parses an integer environment variable
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// MQTTEnabled reports whether an MQTT broker is configured
func (c *Config) MQTTEnabled() bool {
	return c.MQTTHost != ""
}
