package handlers

import (
	"errors"
	"net/http"

	"temp_monitor/internal/models"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusUpdated = "updated"
	statusSaved   = "saved"
	statusCleared = "cleared"

	errGetChart        = "failed to load chart"
	errGetSensors      = "failed to list sensors"
	errApplySettings   = "failed to apply settings"
	errSaveSettings    = "failed to save settings"
	errClearLog        = "failed to clear log"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindBody decodes the JSON body into dst, replying 400 when it does not fit.
func (h *Handler) bindBody(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if h.log != nil {
		h.log.Debugw("request_body_rejected", "path", c.FullPath(), "err", err)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
	return false
}

// isValidationErr reports whether err was caused by bad input rather than a
// failure on our side.
func isValidationErr(err error) bool {
	return errors.Is(err, service.ErrInvalidUnits) ||
		errors.Is(err, service.ErrInvalidFrequencyUnit) ||
		errors.Is(err, service.ErrInvalidInterval) ||
		errors.Is(err, service.ErrUnknownRole)
}

// respondControl maps a control error to 400/500, or replies with the
// resulting settings.
func (h *Handler) respondControl(c *gin.Context, err error, logKey, status string) {
	if err != nil {
		if isValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errApplySettings, logKey, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"settings": h.services.Control.Settings(c.Request.Context()),
	})
}

// SetUnitsRequest is the payload of PUT /api/v1/settings/units.
type SetUnitsRequest struct {
	// Display unit. Allowed: C, F
	Units models.Units `json:"units" binding:"required" example:"F"`
}

// SetFrequencyRequest is the payload of PUT /api/v1/settings/frequency.
type SetFrequencyRequest struct {
	// Interval and X axis unit. Allowed: sec, min
	FrequencyUnit models.FrequencyUnit `json:"frequency_unit" binding:"required" example:"sec"`
}

// SetIntervalRequest is the payload of PUT /api/v1/settings/interval.
type SetIntervalRequest struct {
	// Ticks are this many frequency units apart
	LogInterval int `json:"log_interval" binding:"required" example:"5"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current chart
// @Description  Series, ranges, axis bounds and live values for every role.
// @Tags         chart
// @Produce      json
// @Success      200  {object}  models.ChartSnapshot
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/chart [get]
func (h *Handler) getChart(c *gin.Context) {
	snap, err := h.services.Monitoring.Chart(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetChart, "chart_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Effective settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  service.SettingsView
// @Router       /api/v1/settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Control.Settings(c.Request.Context()))
}

// @Summary      Sensors
// @Description  Probes visible on the bus and the last stored read outcome of each.
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  service.SensorsView
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensors [get]
func (h *Handler) getSensors(c *gin.Context) {
	view, err := h.services.Monitoring.Sensors(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSensors, "sensors_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Set display units
// @Description  Rebuilds the chart from the log in the new unit.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      SetUnitsRequest  true  "Units payload"
// @Success      200   {object}  map[string]interface{}  "status, settings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings/units [put]
// @Security     BearerAuth
func (h *Handler) setUnits(c *gin.Context) {
	var req SetUnitsRequest
	if !h.bindBody(c, &req) {
		return
	}
	err := h.services.Control.SetUnits(c.Request.Context(), req.Units)
	h.respondControl(c, err, "set_units_failed", statusUpdated)
}

// @Summary      Set frequency unit
// @Description  Reschedules sampling and rebuilds the chart with the new X axis unit.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      SetFrequencyRequest  true  "Frequency payload"
// @Success      200   {object}  map[string]interface{}  "status, settings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings/frequency [put]
// @Security     BearerAuth
func (h *Handler) setFrequency(c *gin.Context) {
	var req SetFrequencyRequest
	if !h.bindBody(c, &req) {
		return
	}
	err := h.services.Control.SetFrequencyUnit(c.Request.Context(), req.FrequencyUnit)
	h.respondControl(c, err, "set_frequency_failed", statusUpdated)
}

// @Summary      Set log interval
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      SetIntervalRequest  true  "Interval payload"
// @Success      200   {object}  map[string]interface{}  "status, settings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings/interval [put]
// @Security     BearerAuth
func (h *Handler) setInterval(c *gin.Context) {
	var req SetIntervalRequest
	if !h.bindBody(c, &req) {
		return
	}
	err := h.services.Control.SetLogInterval(c.Request.Context(), req.LogInterval)
	h.respondControl(c, err, "set_interval_failed", statusUpdated)
}

// @Summary      Assign sensor roles
// @Description  Maps roles (product, ambient) to sensor ids. An empty id unassigns the role.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]string  true  "role -> sensor id"
// @Success      200   {object}  map[string]interface{}  "status, settings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/roles [put]
// @Security     BearerAuth
func (h *Handler) assignRoles(c *gin.Context) {
	var req models.RoleAssignment
	if !h.bindBody(c, &req) {
		return
	}
	err := h.services.Control.AssignRoles(c.Request.Context(), req)
	h.respondControl(c, err, "assign_roles_failed", statusUpdated)
}

// @Summary      Save settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/settings/save [post]
// @Security     BearerAuth
func (h *Handler) saveSettings(c *gin.Context) {
	if err := h.services.Control.SaveSettings(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveSettings, "settings_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSaved})
}

// @Summary      Clear temperature log
// @Description  Truncates the log to its header and empties the chart.
// @Tags         log
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/log/clear [post]
// @Security     BearerAuth
func (h *Handler) clearLog(c *gin.Context) {
	if err := h.services.Control.ClearLog(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errClearLog, "log_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}
