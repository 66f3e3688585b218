package metrics

import (
	"testing"
	"time"

	bridge "aircon_bridge"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type fakeSource struct {
	state     bridge.DeviceState
	hasState  bool
	lastErr   error
	refreshed time.Time
}

func (f *fakeSource) Snapshot() (bridge.DeviceState, bool) { return f.state, f.hasState }
func (f *fakeSource) LastRefreshed() time.Time             { return f.refreshed }
func (f *fakeSource) LastError() error                     { return f.lastErr }

// gather registers the collector on a fresh registry and returns a
// name -> family map for assertions.
func gather(t *testing.T, src Source) map[string]*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(src))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func gaugeValue(t *testing.T, fams map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf, ok := fams[name]
	if !ok {
		t.Fatalf("metric %s not exported", name)
	}
	if len(mf.Metric) != 1 {
		t.Fatalf("metric %s has %d series, want 1", name, len(mf.Metric))
	}
	return mf.Metric[0].GetGauge().GetValue()
}

func labelValue(t *testing.T, fams map[string]*dto.MetricFamily, name, label string) string {
	t.Helper()
	mf, ok := fams[name]
	if !ok {
		t.Fatalf("metric %s not exported", name)
	}
	for _, m := range mf.Metric {
		if m.GetGauge().GetValue() != 1 {
			continue
		}
		for _, lp := range m.Label {
			if lp.GetName() == label {
				return lp.GetValue()
			}
		}
	}
	t.Fatalf("metric %s has no active %s series", name, label)
	return ""
}

func TestCollectWithState(t *testing.T) {
	refreshed := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		state: bridge.DeviceState{
			Power:       true,
			Mode:        bridge.ModeHeat,
			FanSpeed:    bridge.FanQuiet,
			SetpointC:   21.5,
			IndoorTempC: 19,
			HumidityPct: 50,
		},
		hasState:  true,
		refreshed: refreshed,
	}

	fams := gather(t, src)

	if got := gaugeValue(t, fams, "aircon_state_available"); got != 1 {
		t.Errorf("aircon_state_available = %v, want 1", got)
	}
	if got := gaugeValue(t, fams, "aircon_refresh_success"); got != 1 {
		t.Errorf("aircon_refresh_success = %v, want 1", got)
	}
	if got := gaugeValue(t, fams, "aircon_power_on"); got != 1 {
		t.Errorf("aircon_power_on = %v, want 1", got)
	}
	if got := gaugeValue(t, fams, "aircon_setpoint_celsius"); got != 21.5 {
		t.Errorf("aircon_setpoint_celsius = %v, want 21.5", got)
	}
	if got := gaugeValue(t, fams, "aircon_indoor_temperature_celsius"); got != 19 {
		t.Errorf("aircon_indoor_temperature_celsius = %v, want 19", got)
	}
	if got := gaugeValue(t, fams, "aircon_indoor_humidity_percent"); got != 50 {
		t.Errorf("aircon_indoor_humidity_percent = %v, want 50", got)
	}
	if got := gaugeValue(t, fams, "aircon_last_refresh_timestamp_seconds"); got != float64(refreshed.Unix()) {
		t.Errorf("aircon_last_refresh_timestamp_seconds = %v", got)
	}
	if got := labelValue(t, fams, "aircon_mode", "mode"); got != "Heat" {
		t.Errorf("active mode label = %q, want Heat", got)
	}
	if got := labelValue(t, fams, "aircon_fan_mode", "fan_mode"); got != "Quiet" {
		t.Errorf("active fan label = %q, want Quiet", got)
	}
}

func TestCollectBeforeFirstFetch(t *testing.T) {
	fams := gather(t, &fakeSource{lastErr: bridge.ErrDeviceUnreachable})

	if got := gaugeValue(t, fams, "aircon_state_available"); got != 0 {
		t.Errorf("aircon_state_available = %v, want 0", got)
	}
	if got := gaugeValue(t, fams, "aircon_refresh_success"); got != 0 {
		t.Errorf("aircon_refresh_success = %v, want 0", got)
	}
	// value gauges stay unexported until a snapshot exists
	for _, name := range []string{
		"aircon_setpoint_celsius",
		"aircon_indoor_temperature_celsius",
		"aircon_power_on",
		"aircon_mode",
	} {
		if _, ok := fams[name]; ok {
			t.Errorf("metric %s exported without state", name)
		}
	}
}

func TestCollectStaleStateAfterFailure(t *testing.T) {
	src := &fakeSource{
		state:    bridge.DeviceState{Power: true, Mode: bridge.ModeCool, FanSpeed: bridge.FanAuto, SetpointC: 23},
		hasState: true,
		lastErr:  bridge.ErrDeviceUnreachable,
	}

	fams := gather(t, src)

	if got := gaugeValue(t, fams, "aircon_refresh_success"); got != 0 {
		t.Errorf("aircon_refresh_success = %v, want 0", got)
	}
	// stale values remain scrapeable
	if got := gaugeValue(t, fams, "aircon_setpoint_celsius"); got != 23 {
		t.Errorf("aircon_setpoint_celsius = %v, want 23", got)
	}
}

func TestModeLabelSwitches(t *testing.T) {
	src := &fakeSource{
		state:    bridge.DeviceState{Mode: bridge.ModeCool, FanSpeed: bridge.FanAuto},
		hasState: true,
	}
	collector := NewCollector(src)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("first gather: %v", err)
	}

	src.state.Mode = bridge.ModeDry
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("second gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "aircon_mode" {
			continue
		}
		// Reset between scrapes: only the active label survives
		if len(mf.Metric) != 1 {
			t.Fatalf("aircon_mode has %d series, want 1", len(mf.Metric))
		}
		if got := mf.Metric[0].Label[0].GetValue(); got != "Dry" {
			t.Fatalf("active mode = %q, want Dry", got)
		}
	}
}
