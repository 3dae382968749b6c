package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/riposte/riposte/internal/event"
)

const eventClass = "ConversationEvent"

// WeaviateStore keeps the event journal in a Weaviate instance, which some
// deployments already run for semantic search over conversations. Events are
// plain objects with no vectors.
type WeaviateStore struct {
	client *weaviate.Client
	logger zerolog.Logger
}

// NewWeaviateStore connects to Weaviate at host (host:port, no scheme) and
// ensures the event class exists.
func NewWeaviateStore(ctx context.Context, host string, logger zerolog.Logger) (*WeaviateStore, error) {
	client, err := weaviate.NewClient(weaviate.Config{Scheme: "http", Host: host})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	store := &WeaviateStore{
		client: client,
		logger: logger.With().Str("component", "eventstore").Logger(),
	}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure event schema: %w", err)
	}
	return store, nil
}

func (s *WeaviateStore) ensureSchema(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(eventClass).Do(cctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      eventClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "eventId", DataType: []string{"uuid"}},
			{Name: "trackingId", DataType: []string{"text"}},
			{Name: "eventType", DataType: []string{"text"}},
			{Name: "timestamp", DataType: []string{"date"}},
			{Name: "actor", DataType: []string{"text"}},
			{Name: "message", DataType: []string{"text"}},
			{Name: "metadata", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(cctx); err != nil {
		return err
	}
	s.logger.Info().Str("class", eventClass).Msg("Created event class")
	return nil
}

// Append writes one event object, keyed by the event id.
func (s *WeaviateStore) Append(ctx context.Context, ev *event.Event) error {
	payload := map[string]interface{}{
		"eventId":    ev.ID,
		"trackingId": ev.TrackingID,
		"eventType":  string(ev.Type),
		"timestamp":  ev.Timestamp.UTC().Format(time.RFC3339Nano),
		"actor":      ev.Actor,
		"message":    ev.Message,
	}
	if len(ev.Metadata) > 0 {
		metadata, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		payload["metadata"] = string(metadata)
	}

	_, err := s.client.Data().Creator().
		WithClassName(eventClass).
		WithID(ev.ID).
		WithProperties(payload).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Query fetches events matching the filter, ascending by timestamp.
func (s *WeaviateStore) Query(ctx context.Context, f Filter) ([]event.Event, error) {
	var operands []*filters.WhereBuilder
	if f.TrackingID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"trackingId"}).WithOperator(filters.Equal).WithValueText(f.TrackingID))
	}
	if f.Type != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"eventType"}).WithOperator(filters.Equal).WithValueText(string(f.Type)))
	}
	if !f.Since.IsZero() {
		operands = append(operands, filters.Where().
			WithPath([]string{"timestamp"}).WithOperator(filters.GreaterThanEqual).WithValueDate(f.Since.UTC()))
	}

	req := s.client.GraphQL().Get().
		WithClassName(eventClass).
		WithSort(gql.Sort{Path: []string{"timestamp"}, Order: gql.Asc}).
		WithFields(
			gql.Field{Name: "eventId"},
			gql.Field{Name: "trackingId"},
			gql.Field{Name: "eventType"},
			gql.Field{Name: "timestamp"},
			gql.Field{Name: "actor"},
			gql.Field{Name: "message"},
			gql.Field{Name: "metadata"},
		)
	switch len(operands) {
	case 0:
	case 1:
		req = req.WithWhere(operands[0])
	default:
		req = req.WithWhere(filters.Where().WithOperator(filters.And).WithOperands(operands))
	}
	if f.Limit > 0 {
		req = req.WithLimit(f.Limit)
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("event query failed: %s", resp.Errors[0].Message)
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	raw, ok := getData[eventClass].([]interface{})
	if !ok {
		return nil, nil
	}

	events := make([]event.Event, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		ev := event.Event{
			ID:         str(m["eventId"]),
			TrackingID: str(m["trackingId"]),
			Type:       event.Type(str(m["eventType"])),
			Actor:      str(m["actor"]),
			Message:    str(m["message"]),
		}
		if ts, err := time.Parse(time.RFC3339Nano, str(m["timestamp"])); err == nil {
			ev.Timestamp = ts
		}
		if metadata := str(m["metadata"]); metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &ev.Metadata); err != nil {
				s.logger.Warn().Err(err).Str("event_id", ev.ID).Msg("Invalid event metadata")
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

// Close is a no-op; the client holds no connection state worth closing.
func (s *WeaviateStore) Close() error {
	return nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
