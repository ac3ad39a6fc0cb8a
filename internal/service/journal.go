package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

// JournalService lists control actions and faults recorded by the monitor.
type JournalService struct {
	events repository.EventRepo
}

func NewJournalService(events repository.EventRepo) *JournalService {
	return &JournalService{events: events}
}

// List returns the journal entries matching f, oldest first.
func (s *JournalService) List(ctx context.Context, f LogFilter) ([]models.MonitorEvent, error) {
	q, err := f.normalized()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q.From, q.To, q.Type)
}

// normalized puts the bounds in UTC and the type in upper case, and rejects
// filters that can never match.
func (f LogFilter) normalized() (LogFilter, error) {
	out := LogFilter{
		From: f.From,
		To:   f.To,
		Type: strings.ToUpper(strings.TrimSpace(f.Type)),
	}
	if !out.From.IsZero() {
		out.From = out.From.UTC()
	}
	if !out.To.IsZero() {
		out.To = out.To.UTC()
	}

	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	if out.Type != "" && !models.KnownEventType(out.Type) {
		return LogFilter{}, fmt.Errorf("%w %q", ErrUnknownEventType, f.Type)
	}
	return out, nil
}
