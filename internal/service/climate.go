package service

import (
	"context"
	"fmt"

	bridge "aircon_bridge"
	"aircon_bridge/internal/logger"
)

// StateSource is the slice of the coordinator the climate controller needs:
// the cached base snapshot for full-frame encoding and the post-command
// refresh trigger.
type StateSource interface {
	Snapshot() (bridge.DeviceState, bool)
	RequestRefresh() bool
}

// ClimateService maps user-facing intents onto device commands. It owns no
// authoritative state: the cache only ever reflects confirmed device reads,
// so a command updates nothing locally until the follow-up refresh lands.
type ClimateService struct {
	device CommandSender
	source StateSource
	log    *logger.Logger
}

func NewClimateService(device CommandSender, source StateSource, log *logger.Logger) *ClimateService {
	return &ClimateService{device: device, source: source, log: log}
}

// SetPower turns the unit on or off.
func (s *ClimateService) SetPower(ctx context.Context, on bool) error {
	return s.dispatch(ctx, bridge.NewPowerCommand(on))
}

// SetTemperature sets the target temperature. The value is rounded to the
// nearest 0.5 °C; a rounded value outside [16.0, 30.0] fails with
// ErrInvalidInput rather than being clamped silently.
func (s *ClimateService) SetTemperature(ctx context.Context, targetC float64) error {
	cmd, err := bridge.NewTemperatureCommand(targetC)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, cmd)
}

// SetFanMode sets the fan speed.
func (s *ClimateService) SetFanMode(ctx context.Context, fan bridge.FanSpeed) error {
	cmd, err := bridge.NewFanCommand(fan)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, cmd)
}

// SetHvacMode sets the operation mode. Power is a separate axis: switching
// mode does not implicitly turn the unit on.
func (s *ClimateService) SetHvacMode(ctx context.Context, mode bridge.Mode) error {
	cmd, err := bridge.NewModeCommand(mode)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, cmd)
}

// dispatch sends a validated command encoded over the last confirmed
// snapshot, then asks for an immediate refresh so telemetry catches up.
func (s *ClimateService) dispatch(ctx context.Context, cmd bridge.Command) error {
	base, ok := s.source.Snapshot()
	if !ok {
		return fmt.Errorf("%w: cannot build command frame", bridge.ErrNoState)
	}
	if err := s.device.SendCommand(ctx, cmd, base); err != nil {
		if s.log != nil {
			s.log.Errorw("command_send_failed", "kind", cmd.Kind, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Infow("command_sent", "kind", cmd.Kind)
	}
	s.source.RequestRefresh()
	return nil
}
