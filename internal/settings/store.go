package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SQLiteProvider persists per-user settings in the shared sqlite database.
// Misses and store failures both degrade to the fallback settings so a
// broken settings table never blocks a reply.
type SQLiteProvider struct {
	db       *sql.DB
	fallback AgentSettings
	logger   zerolog.Logger
}

// NewSQLiteProvider creates the provider and ensures its table exists.
// The fallback settings cover users without a stored row.
func NewSQLiteProvider(db *sql.DB, fallback AgentSettings, logger zerolog.Logger) (*SQLiteProvider, error) {
	p := &SQLiteProvider{
		db:       db,
		fallback: Normalize(fallback),
		logger:   logger.With().Str("component", "settings").Logger(),
	}
	if err := p.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run settings migration: %w", err)
	}
	return p, nil
}

func (p *SQLiteProvider) migrate() error {
	ddl := `CREATE TABLE IF NOT EXISTS agent_settings (
		user_id TEXT PRIMARY KEY,
		company_name TEXT,
		product_name TEXT,
		value_props TEXT,
		calendar_link TEXT,
		tone TEXT,
		meeting_pushiness TEXT,
		escalate_negative INTEGER NOT NULL DEFAULT 1,
		question_threshold INTEGER NOT NULL DEFAULT 3,
		updated_at DATETIME NOT NULL
	)`
	if _, err := p.db.Exec(ddl); err != nil {
		return err
	}
	return nil
}

// GetSettings loads a user's settings row, normalized against defaults. A
// missing row is not an error; a failing store returns the fallback
// settings alongside the error so callers can log and continue.
func (p *SQLiteProvider) GetSettings(ctx context.Context, userID string) (AgentSettings, error) {
	query := `SELECT company_name, product_name, value_props, calendar_link, tone,
		meeting_pushiness, escalate_negative, question_threshold
		FROM agent_settings WHERE user_id = ?`

	var (
		s          AgentSettings
		valueProps sql.NullString
		calendar   sql.NullString
		escalate   int
	)
	err := p.db.QueryRowContext(ctx, query, userID).Scan(
		&s.CompanyName, &s.ProductName, &valueProps, &calendar,
		&s.Tone, &s.MeetingPushiness, &escalate, &s.QuestionThreshold,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return p.fallback, nil
	}
	if err != nil {
		return p.fallback, fmt.Errorf("failed to load settings for %s: %w", userID, err)
	}

	s.CalendarLink = calendar.String
	s.EscalateNegative = escalate != 0
	if valueProps.Valid && valueProps.String != "" {
		if err := json.Unmarshal([]byte(valueProps.String), &s.ValueProps); err != nil {
			p.logger.Warn().Err(err).Str("user_id", userID).Msg("Invalid value_props, using defaults")
			s.ValueProps = nil
		}
	}
	return Normalize(s), nil
}

// SaveSettings upserts a user's settings row.
func (p *SQLiteProvider) SaveSettings(ctx context.Context, userID string, s AgentSettings) error {
	props, err := json.Marshal(s.ValueProps)
	if err != nil {
		return fmt.Errorf("failed to encode value props: %w", err)
	}

	escalate := 0
	if s.EscalateNegative {
		escalate = 1
	}

	query := `INSERT INTO agent_settings
		(user_id, company_name, product_name, value_props, calendar_link, tone,
		 meeting_pushiness, escalate_negative, question_threshold, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			company_name = excluded.company_name,
			product_name = excluded.product_name,
			value_props = excluded.value_props,
			calendar_link = excluded.calendar_link,
			tone = excluded.tone,
			meeting_pushiness = excluded.meeting_pushiness,
			escalate_negative = excluded.escalate_negative,
			question_threshold = excluded.question_threshold,
			updated_at = excluded.updated_at`

	if _, err := p.db.ExecContext(ctx, query,
		userID, s.CompanyName, s.ProductName, string(props), s.CalendarLink,
		s.Tone, s.MeetingPushiness, escalate, s.QuestionThreshold, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", userID, err)
	}
	return nil
}
