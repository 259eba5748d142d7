package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gakumasu1717-cloud/chatlobby/cache"
	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
	"github.com/gakumasu1717-cloud/chatlobby/internal/bus"
	"github.com/gakumasu1717-cloud/chatlobby/internal/logutil"
	"github.com/gakumasu1717-cloud/chatlobby/internal/statepaths"
	"github.com/gakumasu1717-cloud/chatlobby/lobby"
	"github.com/gakumasu1717-cloud/chatlobby/query"
	"github.com/spf13/viper"
)

// runtime is the composition root: every command builds one and reaches
// the data layer through it, so nothing lives in package-level state.
type runtime struct {
	logger *slog.Logger
	host   *hostapi.Client
	cache  *cache.Store
	lobby  *lobby.Store
	engine *query.Engine
	events *bus.Bus
}

func newRuntime() (*runtime, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, err
	}

	host := hostapi.NewClient(hostapi.Config{
		BaseURL:        viper.GetString("host.base_url"),
		RequestTimeout: viper.GetDuration("host.request_timeout"),
		Retries:        viper.GetInt("host.retries"),
		RetryBaseDelay: viper.GetDuration("host.retry_base_delay"),
	}, logger)

	cacheStore := cache.New(host, cache.TTLConfig{
		Chats:      viper.GetDuration("cache.ttl.chats"),
		ChatCounts: viper.GetDuration("cache.ttl.chat_counts"),
		Characters: viper.GetDuration("cache.ttl.characters"),
		Personas:   viper.GetDuration("cache.ttl.personas"),
	}, logger)

	events := bus.New(logger)
	events.Subscribe(bus.TopicCacheInvalidated, func(payload any) {
		logger.Debug("cache_invalidated", "category", payload)
	})
	lobbyStore := lobby.NewStore(statepaths.LobbyDocumentPath(), logger, func(msg string) {
		_, _ = fmt.Fprintln(os.Stderr, "warning: "+msg)
	})

	return &runtime{
		logger: logger,
		host:   host,
		cache:  cacheStore,
		lobby:  lobbyStore,
		engine: query.NewEngine(cacheStore, lobbyStore, logger),
		events: events,
	}, nil
}
