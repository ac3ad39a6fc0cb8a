package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const errListJournal = "failed to load journal"

// Accepted layouts for the journal bounds, tried in order.
var journalTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

// journalQuery is the raw query string of GET /api/v1/logs.
type journalQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

// filter turns the query into a service filter. A date-only "to" covers the
// whole day.
func (q journalQuery) filter() (service.LogFilter, error) {
	var f service.LogFilter
	if q.From != "" {
		t, err := parseJournalTime(q.From)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = t
	}
	if q.To != "" {
		t, err := parseJournalTime(q.To)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if !strings.ContainsAny(q.To, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	f.Type = q.Type
	return f, nil
}

func parseJournalTime(s string) (time.Time, error) {
	for _, layout := range journalTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}

// @Summary      List journal events
// @Description  Filter the journal by time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and type. A date-only 'to' includes the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range"    example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(START,STOP,RESCHEDULE,UNITS_CHANGE,ROLE_CHANGE,LOG_CLEAR,SENSOR_FAULT,LOG_WRITE_FAILED)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	var q journalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidTimeRange), errors.Is(err, service.ErrUnknownEventType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errListJournal, "journal_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
