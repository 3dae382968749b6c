package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/classify"
	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/conversation"
	"github.com/riposte/riposte/internal/event"
	"github.com/riposte/riposte/internal/eventstore"
	"github.com/riposte/riposte/internal/respond"
	"github.com/riposte/riposte/internal/settings"
	"github.com/riposte/riposte/internal/tracking"
)

// runRender previews a reply template with sample data
func runRender(intentName, leadName, calendarLink, stageName string, out io.Writer) error {
	intent, ok := classify.LookupIntent(intentName)
	if !ok {
		return fmt.Errorf("unknown intent %q", intentName)
	}

	st := settings.Defaults()
	st.CalendarLink = calendarLink

	lead := respond.Lead{
		Name:    leadName,
		Email:   "lead@example.com",
		Subject: "Re: quick question",
		Message: "Preview message from " + leadName,
	}

	text, err := respond.NewSynthesizer().Synthesize(intent, classify.SentimentNeutral, st, lead, parseStage(stageName))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, text)
	return err
}

// runToken prints a fresh tracking token, with its reply alias when a
// domain is given
func runToken(domain string, out io.Writer) error {
	token := tracking.Generate()
	fmt.Fprintf(out, "token: %s\n", token)
	if domain != "" {
		fmt.Fprintf(out, "alias: %s\n", tracking.Alias(token, domain))
	}
	return nil
}

func parseStage(name string) string {
	switch name {
	case "active":
		return conversation.StageActive
	case "engaged":
		return conversation.StageEngaged
	default:
		return conversation.StageNew
	}
}

// runEvents tails the raw event journal for a tracking id straight from the
// configured store, bypassing the service API
func runEvents(configPath, trackingID, typeName string, limit int, out io.Writer) error {
	filter := eventstore.Filter{TrackingID: trackingID, Limit: limit}
	if typeName != "" {
		typ, ok := event.ParseType(typeName)
		if !ok {
			return fmt.Errorf("unknown event type %q", typeName)
		}
		filter.Type = typ
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.Query(context.Background(), filter)
	if err != nil {
		return err
	}

	for _, ev := range events {
		fmt.Fprintf(out, "%s  %-12s  %s", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Actor)
		if ev.Message != "" {
			fmt.Fprintf(out, "  %s", firstLine(ev.Message))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d event(s)\n", len(events))
	return nil
}

// openStore builds the same store backend the service would use
func openStore(cfg *config.Config) (eventstore.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return eventstore.NewSQLiteStore(cfg.Store.Path)
	case "weaviate":
		if cfg.Store.WeaviateHost == "" {
			return nil, fmt.Errorf("weaviate backend requires weaviate_host")
		}
		return eventstore.NewWeaviateStore(context.Background(), cfg.Store.WeaviateHost, zerolog.Nop())
	case "memory":
		return eventstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}
