// Package audit records notable casino events: sessions opening, milestone
// bonuses, the goal being reached, large wins and operator switches.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/google/uuid"
)

// Event types
const (
	EventSessionCreated   = "session_created"
	EventMilestoneReached = "milestone_reached"
	EventGoalReached      = "goal_reached"
	EventLargeWin         = "large_win"
	EventGamingDisabled   = "gaming_disabled"
	EventGamingEnabled    = "gaming_enabled"
	EventGameDisabled     = "game_disabled"
	EventGameEnabled      = "game_enabled"
	EventRNGHealthCheck   = "rng_health_check"
)

// Service provides audit logging functionality
type Service struct {
	db *sql.DB
}

// New creates a new audit service
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// LogEvent records a significant event
func (s *Service) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	var data sql.NullString
	if len(event.Data) > 0 {
		data = sql.NullString{String: string(event.Data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, type, severity, timestamp, session_id, game_id, description, data, component)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.Type, event.Severity, event.Timestamp, event.SessionID, event.GameID,
		event.Description, data, event.Component)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Log is a convenience method for logging events
func (s *Service) Log(ctx context.Context, eventType string, severity domain.EventSeverity, description string, data interface{}, opts ...EventOption) error {
	event := &domain.AuditEvent{
		Type:        eventType,
		Severity:    severity,
		Description: description,
		Component:   "casino",
	}

	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			event.Data = raw
		}
	}

	for _, opt := range opts {
		opt(event)
	}

	return s.LogEvent(ctx, event)
}

// EventOption is a functional option for configuring audit events
type EventOption func(*domain.AuditEvent)

// WithSession sets the session ID for the event
func WithSession(sessionID string) EventOption {
	return func(e *domain.AuditEvent) {
		e.SessionID = &sessionID
	}
}

// WithGame sets the game the event concerns
func WithGame(id domain.GameID) EventOption {
	return func(e *domain.AuditEvent) {
		g := string(id)
		e.GameID = &g
	}
}

// WithComponent sets the component for the event
func WithComponent(component string) EventOption {
	return func(e *domain.AuditEvent) {
		e.Component = component
	}
}

// EventFilter defines criteria for filtering audit events
type EventFilter struct {
	SessionID string
	Type      string
	From      time.Time
	To        time.Time
	Limit     int
}

// GetEvents retrieves audit events, newest first
func (s *Service) GetEvents(ctx context.Context, filter *EventFilter) ([]*domain.AuditEvent, error) {
	query := `SELECT id, type, severity, timestamp, session_id, game_id, description, data, component
			  FROM audit_events WHERE 1=1`
	args := []interface{}{}
	paramIdx := 1

	if filter != nil {
		if filter.SessionID != "" {
			query += fmt.Sprintf(" AND session_id = $%d", paramIdx)
			args = append(args, filter.SessionID)
			paramIdx++
		}
		if filter.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", paramIdx)
			args = append(args, filter.Type)
			paramIdx++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND timestamp >= $%d", paramIdx)
			args = append(args, filter.From)
			paramIdx++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND timestamp <= $%d", paramIdx)
			args = append(args, filter.To)
			paramIdx++
		}
	}

	query += " ORDER BY timestamp DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", paramIdx)
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		var sessionID, gameID, data sql.NullString

		err := rows.Scan(&event.ID, &event.Type, &event.Severity, &event.Timestamp,
			&sessionID, &gameID, &event.Description, &data, &event.Component)
		if err != nil {
			return nil, err
		}

		if sessionID.Valid {
			event.SessionID = &sessionID.String
		}
		if gameID.Valid {
			event.GameID = &gameID.String
		}
		if data.Valid && data.String != "" {
			event.Data = json.RawMessage(data.String)
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
