package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/calendar"
	"github.com/riposte/riposte/internal/classify"
	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/dedup"
	"github.com/riposte/riposte/internal/email"
	"github.com/riposte/riposte/internal/enhance"
	"github.com/riposte/riposte/internal/eventstore"
	"github.com/riposte/riposte/internal/guard"
	"github.com/riposte/riposte/internal/mailer"
	"github.com/riposte/riposte/internal/processor"
	"github.com/riposte/riposte/internal/respond"
	"github.com/riposte/riposte/internal/settings"
	"github.com/riposte/riposte/internal/smtp"
	"github.com/riposte/riposte/internal/webhook"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().
		Str("service", "riposte").
		Timestamp().
		Logger()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	log.Info().
		Str("store", cfg.Store.Backend).
		Int("http_port", cfg.Server.HTTPPort).
		Int("smtp_port", cfg.Server.SMTPPort).
		Str("reply_domain", cfg.Server.ReplyDomain).
		Msg("Riposte starting")

	ctx := context.Background()

	// -------- Event store --------------
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Event store unavailable")
	}
	defer func() { _ = store.Close() }()

	// -------- Settings provider --------
	provider, err := newSettingsProvider(store, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Settings provider unavailable")
	}

	// -------- Dedup filter -------------
	filter, rdb := newDedupFilter(cfg, log)
	defer func() { _ = filter.Close() }()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// -------- Reply pipeline -----------
	g, err := guard.New(cfg.Suppression, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid suppression rules")
	}

	synth := respond.NewSynthesizer()
	for name, tpl := range cfg.Agent.Templates {
		intent, ok := classify.LookupIntent(name)
		if !ok {
			log.Fatal().Str("intent", name).Msg("Template override for unknown intent")
		}
		if err := synth.RegisterTemplate(intent, tpl); err != nil {
			log.Fatal().Err(err).Str("intent", name).Msg("Invalid template override")
		}
	}

	sender, err := mailer.FromConfig(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid mail configuration")
	}

	p := processor.NewProcessor(processor.Deps{
		Store:      store,
		Guard:      g,
		Dedup:      filter,
		Settings:   provider,
		Classifier: newClassifier(cfg, log),
		Synth:      synth,
		Enhancer:   newEnhancer(cfg, log),
		Mailer:     sender,
		Calendar:   calendar.NewClient(cfg.Calendar, log),
		From: email.Address{
			Name:    cfg.Mail.FromName,
			Address: cfg.Mail.FromAddress,
		},
		ReplyDomain: cfg.Server.ReplyDomain,
		UserID:      cfg.Agent.UserID,
		DedupWindow: cfg.Redis.DedupWindow(),
	}, log)

	// -------- Servers ------------------
	httpServer := webhook.NewServer(cfg.Server.HTTPPort, p, log)
	smtpServer := smtp.NewServer(cfg.Server, p, log)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	go func() {
		if err := smtpServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("SMTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	if err := smtpServer.Stop(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("SMTP server forced to shutdown")
	}
	log.Info().Msg("Riposte exited")
}

// newStore builds the configured event store backend
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (eventstore.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return eventstore.NewSQLiteStore(cfg.Store.Path)
	case "weaviate":
		if cfg.Store.WeaviateHost == "" {
			return nil, fmt.Errorf("weaviate backend requires weaviate_host")
		}
		return eventstore.NewWeaviateStore(ctx, cfg.Store.WeaviateHost, log)
	case "memory":
		return eventstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// newSettingsProvider picks sqlite-backed settings when the event store
// shares a sqlite database, otherwise serves the config block statically
func newSettingsProvider(store eventstore.Store, cfg *config.Config, log zerolog.Logger) (settings.Provider, error) {
	if s, ok := store.(*eventstore.SQLiteStore); ok {
		return settings.NewSQLiteProvider(s.DB(), cfg.Agent.Settings, log)
	}
	return settings.NewStaticProvider(cfg.Agent.Settings), nil
}

// newDedupFilter wires Redis when configured, otherwise an in-memory
// filter; the returned client is nil for the in-memory case
func newDedupFilter(cfg *config.Config, log zerolog.Logger) (dedup.Filter, *redis.Client) {
	window := cfg.Redis.DedupWindow()
	if cfg.Redis.Addr == "" {
		return dedup.NewMemoryFilter(window), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info().Str("addr", cfg.Redis.Addr).Dur("window", window).Msg("Using Redis dedup filter")
	return dedup.NewRedisFilter(rdb, window), rdb
}

// newClassifier returns the LLM classifier when configured, keyword
// rules otherwise
func newClassifier(cfg *config.Config, log zerolog.Logger) classify.Classifier {
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey != "" {
		return classify.NewOpenAIClassifier(cfg.LLM.APIKey, cfg.LLM.Model, log)
	}
	log.Info().Msg("No LLM configured, using keyword classifier")
	return classify.NewKeywordClassifier()
}

// newEnhancer returns the LLM enhancer when configured
func newEnhancer(cfg *config.Config, log zerolog.Logger) enhance.Enhancer {
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey != "" {
		return enhance.NewOpenAIEnhancer(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, log)
	}
	return enhance.NoopEnhancer{}
}
