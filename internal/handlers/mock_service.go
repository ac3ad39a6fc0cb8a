package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"temp_monitor/internal/models"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	err      error
	settings service.SettingsView

	lastUnits    models.Units
	lastFreq     models.FrequencyUnit
	lastInterval int
	lastRoles    models.RoleAssignment
	calls        []string
}

func (m *mockControl) record(name string) error {
	m.calls = append(m.calls, name)
	return m.err
}

func (m *mockControl) Start(ctx context.Context) error   { return m.record("Start") }
func (m *mockControl) Stop(ctx context.Context) error    { return m.record("Stop") }
func (m *mockControl) Rebuild(ctx context.Context) error { return m.record("Rebuild") }
func (m *mockControl) SetUnits(ctx context.Context, u models.Units) error {
	m.lastUnits = u
	return m.record("SetUnits")
}
func (m *mockControl) SetFrequencyUnit(ctx context.Context, f models.FrequencyUnit) error {
	m.lastFreq = f
	return m.record("SetFrequencyUnit")
}
func (m *mockControl) SetLogInterval(ctx context.Context, n int) error {
	m.lastInterval = n
	return m.record("SetLogInterval")
}
func (m *mockControl) AssignRoles(ctx context.Context, a models.RoleAssignment) error {
	m.lastRoles = a
	return m.record("AssignRoles")
}
func (m *mockControl) ClearLog(ctx context.Context) error     { return m.record("ClearLog") }
func (m *mockControl) SaveSettings(ctx context.Context) error { return m.record("SaveSettings") }
func (m *mockControl) Settings(ctx context.Context) service.SettingsView {
	return m.settings
}

// mockMonitoring is read from the websocket writer goroutine while tests
// change the chart, hence the lock.
type mockMonitoring struct {
	mu      sync.Mutex
	chart   models.ChartSnapshot
	err     error
	sensors service.SensorsView
	polls   int
}

func (m *mockMonitoring) Chart(ctx context.Context) (models.ChartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	return m.chart, m.err
}

func (m *mockMonitoring) Sensors(ctx context.Context) (service.SensorsView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensors, m.err
}

func (m *mockMonitoring) setChart(snap models.ChartSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chart = snap
}

func (m *mockMonitoring) pollCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

type mockEventLog struct {
	resp     []models.MonitorEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.MonitorEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
