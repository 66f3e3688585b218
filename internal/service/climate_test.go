package service

import (
	"context"
	"errors"
	"testing"

	bridge "aircon_bridge"
)

type fakeSender struct {
	err   error
	calls []bridge.Command
	bases []bridge.DeviceState
}

func (f *fakeSender) SendCommand(_ context.Context, cmd bridge.Command, base bridge.DeviceState) error {
	f.calls = append(f.calls, cmd)
	f.bases = append(f.bases, base)
	return f.err
}

type fakeSource struct {
	state        bridge.DeviceState
	hasState     bool
	refreshCalls int
}

func (f *fakeSource) Snapshot() (bridge.DeviceState, bool) { return f.state, f.hasState }
func (f *fakeSource) RequestRefresh() bool {
	f.refreshCalls++
	return true
}

func newClimateFixture() (*ClimateService, *fakeSender, *fakeSource) {
	sender := &fakeSender{}
	source := &fakeSource{
		state: bridge.DeviceState{
			Power:     true,
			Mode:      bridge.ModeCool,
			FanSpeed:  bridge.FanAuto,
			SetpointC: 23.0,
		},
		hasState: true,
	}
	return NewClimateService(sender, source, nil), sender, source
}

func TestSetTemperature(t *testing.T) {
	svc, sender, source := newClimateFixture()

	if err := svc.SetTemperature(context.Background(), 22.0); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.calls))
	}
	cmd := sender.calls[0]
	if cmd.Kind != bridge.CmdSetTemperature || cmd.TargetC != 22.0 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if sender.bases[0] != source.state {
		t.Fatalf("base snapshot not passed through: %+v", sender.bases[0])
	}
	if source.refreshCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1 after success", source.refreshCalls)
	}
}

func TestSetTemperatureRounds(t *testing.T) {
	cases := map[float64]float64{
		22.3:  22.5,
		22.2:  22.0,
		16.24: 16.0,
		29.75: 30.0,
	}
	for in, want := range cases {
		svc, sender, _ := newClimateFixture()
		if err := svc.SetTemperature(context.Background(), in); err != nil {
			t.Errorf("SetTemperature(%.2f): %v", in, err)
			continue
		}
		if got := sender.calls[0].TargetC; got != want {
			t.Errorf("SetTemperature(%.2f) sent %.2f, want %.2f", in, got, want)
		}
	}
}

func TestSetTemperatureOutOfRange(t *testing.T) {
	for _, target := range []float64{15.5, 30.5, 15.74, 100, -5} {
		svc, sender, source := newClimateFixture()
		err := svc.SetTemperature(context.Background(), target)
		if !errors.Is(err, bridge.ErrInvalidInput) {
			t.Errorf("SetTemperature(%.2f): err = %v, want ErrInvalidInput", target, err)
		}
		if len(sender.calls) != 0 {
			t.Errorf("SetTemperature(%.2f) reached the device", target)
		}
		if source.refreshCalls != 0 {
			t.Errorf("SetTemperature(%.2f) triggered a refresh", target)
		}
	}
}

func TestSetPower(t *testing.T) {
	svc, sender, _ := newClimateFixture()

	if err := svc.SetPower(context.Background(), false); err != nil {
		t.Fatalf("SetPower: %v", err)
	}
	cmd := sender.calls[0]
	if cmd.Kind != bridge.CmdSetPower || cmd.Power {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestSetFanModeInvalid(t *testing.T) {
	svc, sender, _ := newClimateFixture()

	err := svc.SetFanMode(context.Background(), bridge.FanSpeed("Turbo"))
	if !errors.Is(err, bridge.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(sender.calls) != 0 {
		t.Fatal("invalid fan reached the device")
	}
}

func TestSetHvacMode(t *testing.T) {
	svc, sender, _ := newClimateFixture()

	if err := svc.SetHvacMode(context.Background(), bridge.ModeDry); err != nil {
		t.Fatalf("SetHvacMode: %v", err)
	}
	cmd := sender.calls[0]
	if cmd.Kind != bridge.CmdSetHvacMode || cmd.Mode != bridge.ModeDry {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if err := svc.SetHvacMode(context.Background(), bridge.ModeUnknown); !errors.Is(err, bridge.ErrInvalidInput) {
		t.Fatalf("Unknown mode: err = %v, want ErrInvalidInput", err)
	}
}

func TestCommandWithoutSnapshot(t *testing.T) {
	svc, sender, source := newClimateFixture()
	source.hasState = false

	if err := svc.SetPower(context.Background(), true); !errors.Is(err, bridge.ErrNoState) {
		t.Fatalf("err = %v, want ErrNoState", err)
	}
	if len(sender.calls) != 0 {
		t.Fatal("command sent without a base snapshot")
	}
}

func TestSendFailureSkipsRefresh(t *testing.T) {
	svc, sender, source := newClimateFixture()
	sender.err = bridge.ErrDeviceUnreachable

	if err := svc.SetPower(context.Background(), true); !errors.Is(err, bridge.ErrDeviceUnreachable) {
		t.Fatalf("err = %v, want ErrDeviceUnreachable", err)
	}
	if source.refreshCalls != 0 {
		t.Fatal("refresh requested after a failed send")
	}
}

func TestDeviceRejectionSurfacesError(t *testing.T) {
	svc, sender, source := newClimateFixture()
	sender.err = &bridge.DeviceError{Status: 500}

	err := svc.SetHvacMode(context.Background(), bridge.ModeHeat)
	var devErr *bridge.DeviceError
	if !errors.As(err, &devErr) || devErr.Status != 500 {
		t.Fatalf("err = %v, want DeviceError(500)", err)
	}
	if source.refreshCalls != 0 {
		t.Fatal("refresh requested after a rejected command")
	}
	// the cache is only ever written by a confirmed read
	if st, _ := source.Snapshot(); st.Mode != bridge.ModeCool {
		t.Fatalf("cached mode changed to %q after a failed command", st.Mode)
	}
}
