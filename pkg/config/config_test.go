package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("SECRET_KEY", "hunter2")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("SECRET_KEY")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.SecretKey != "hunter2" {
		t.Errorf("SecretKey = %v, want %v", config.SecretKey, "hunter2")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"garbage", time.Minute},
		{"-5s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			os.Setenv("TEST_DURATION", tt.value)
			defer os.Unsetenv("TEST_DURATION")

			if got := getDuration("TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("getDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetInt(t *testing.T) {
	os.Setenv("TEST_INT", "25")
	defer os.Unsetenv("TEST_INT")

	if got := getInt("TEST_INT", 50); got != 25 {
		t.Errorf("getInt() = %v, want 25", got)
	}

	os.Setenv("TEST_INT", "many")
	if got := getInt("TEST_INT", 50); got != 50 {
		t.Errorf("getInt() = %v, want 50", got)
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	if config != Get() {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{
		"mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port", "PORT", "enviroment",
		"LEDGER_DRIVER", "SWEEP_INTERVAL", "RETENTION_INTERVAL", "RETENTION_WINDOW",
		"STRIKE_REMOVAL_ORDER", "BATCH_SIZE",
	} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v", config.MongoDBURL)
	}
	if config.DBName != "ModRelay" {
		t.Errorf("DBName default = %v", config.DBName)
	}
	if config.MQTTEnabled() {
		t.Error("MQTT should be disabled without a host")
	}
	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v", config.MQTTPort)
	}
	if config.Port != "3000" {
		t.Errorf("Port default = %v", config.Port)
	}
	if config.LedgerDriver != "mongo" {
		t.Errorf("LedgerDriver default = %v", config.LedgerDriver)
	}
	if config.SweepInterval != time.Minute {
		t.Errorf("SweepInterval default = %v", config.SweepInterval)
	}
	if config.RetentionInterval != time.Hour || config.RetentionWindow != 24*time.Hour {
		t.Errorf("retention defaults = %v / %v", config.RetentionInterval, config.RetentionWindow)
	}
	if config.StrikeRemovalOrder != "newest" {
		t.Errorf("StrikeRemovalOrder default = %v", config.StrikeRemovalOrder)
	}
	if config.BatchSize != 50 {
		t.Errorf("BatchSize default = %v", config.BatchSize)
	}
}
