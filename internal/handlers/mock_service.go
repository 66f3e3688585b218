package handlers

import (
	"context"
	"time"

	bridge "aircon_bridge"
	"aircon_bridge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ---- Service Mocks ----

type mockClimate struct {
	powerErr error
	tempErr  error
	fanErr   error
	modeErr  error

	powerCalls int
	tempCalls  int
	fanCalls   int
	modeCalls  int

	lastPower bool
	lastTemp  float64
	lastFan   bridge.FanSpeed
	lastMode  bridge.Mode
}

func (m *mockClimate) SetPower(_ context.Context, on bool) error {
	m.powerCalls++
	m.lastPower = on
	return m.powerErr
}

func (m *mockClimate) SetTemperature(_ context.Context, targetC float64) error {
	m.tempCalls++
	m.lastTemp = targetC
	return m.tempErr
}

func (m *mockClimate) SetFanMode(_ context.Context, fan bridge.FanSpeed) error {
	m.fanCalls++
	m.lastFan = fan
	return m.fanErr
}

func (m *mockClimate) SetHvacMode(_ context.Context, mode bridge.Mode) error {
	m.modeCalls++
	m.lastMode = mode
	return m.modeErr
}

type mockMonitoring struct {
	state     bridge.DeviceState
	hasState  bool
	lastErr   error
	refreshed time.Time

	refreshCalls   int
	refreshStarted bool

	updates chan bridge.DeviceState
}

func (m *mockMonitoring) Snapshot() (bridge.DeviceState, bool) { return m.state, m.hasState }
func (m *mockMonitoring) LastRefreshed() time.Time             { return m.refreshed }
func (m *mockMonitoring) LastError() error                     { return m.lastErr }

func (m *mockMonitoring) RequestRefresh() bool {
	m.refreshCalls++
	return m.refreshStarted
}

func (m *mockMonitoring) Subscribe() (string, <-chan bridge.DeviceState) {
	if m.updates == nil {
		m.updates = make(chan bridge.DeviceState, 4)
	}
	return "test-sub", m.updates
}

func (m *mockMonitoring) Unsubscribe(string) {}

// newTestRouter builds a router over mocked services for handler tests.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, prometheus.NewRegistry(), nil)
	return h.InitRoutes()
}
