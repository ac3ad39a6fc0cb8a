package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"temp_monitor/internal/models"

	"github.com/google/uuid"
)

// EventSQLite is the journal of scheduler and control events.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	// same layout as the temperature log, in UTC
	eventTimeLayout = models.TimestampLayout

	insertEventSQL = `
		INSERT INTO monitor_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM monitor_events`
	orderEventsSQL  = ` ORDER BY occurred_at ASC`
)

// Append inserts e. A missing EventID or OccurredAt is filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.MonitorEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		at.UTC().Format(eventTimeLayout),
		normalizeType(e.Type),
		e.Description,
		encodeMeta(e.Metadata),
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.Type, err)
	}
	return nil
}

// List returns events in [from, to] with the given type, oldest first.
// Zero bounds and an empty type do not filter.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.MonitorEvent, error) {
	where, args := eventFilter(from, to, typ)
	rows, err := r.db.QueryContext(ctx, selectEventsSQL+where+orderEventsSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []models.MonitorEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if out == nil {
		out = []models.MonitorEvent{}
	}
	return out, nil
}

// eventFilter builds the WHERE clause for List. Times are compared as
// strings, which orders correctly for eventTimeLayout.
func eventFilter(from, to time.Time, typ string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(eventTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(eventTimeLayout))
	}
	if t := normalizeType(typ); t != "" {
		conds = append(conds, "type = ?")
		args = append(args, t)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(rows *sql.Rows) (models.MonitorEvent, error) {
	var (
		ev   models.MonitorEvent
		at   string
		meta sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &at, &ev.Type, &ev.Description, &meta); err != nil {
		return ev, fmt.Errorf("scan event: %w", err)
	}
	t, err := time.ParseInLocation(eventTimeLayout, at, time.UTC)
	if err != nil {
		return ev, fmt.Errorf("parse event time %q: %w", at, err)
	}
	ev.OccurredAt = t
	ev.Metadata = decodeMeta(meta)
	return ev, nil
}

// encodeMeta stores metadata as JSON, or NULL when there is none or it
// cannot be encoded.
func encodeMeta(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// decodeMeta parses stored JSON; text that is not JSON is returned as is.
func decodeMeta(ns sql.NullString) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return ns.String
	}
	return v
}

func normalizeType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
