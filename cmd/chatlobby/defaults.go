package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Global
	viper.SetDefault("file_state_dir", "~/.chatlobby")
	viper.SetDefault("trace", false)

	// Logging
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)

	// Chat host transport
	viper.SetDefault("host.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("host.request_timeout", 30*time.Second)
	viper.SetDefault("host.retries", 3)
	viper.SetDefault("host.retry_base_delay", 500*time.Millisecond)

	// Cache TTLs; chat lists churn fastest, the roster slowest.
	viper.SetDefault("cache.ttl.chats", 30*time.Second)
	viper.SetDefault("cache.ttl.chat_counts", 60*time.Second)
	viper.SetDefault("cache.ttl.characters", 60*time.Second)
	viper.SetDefault("cache.ttl.personas", 120*time.Second)

	// Preload
	viper.SetDefault("preload.recent_characters", 5)
}
