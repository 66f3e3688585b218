package aircon_bridge

import (
	"fmt"
	"math"
)

// CommandKind discriminates the control intents a consumer can issue.
type CommandKind string

const (
	CmdSetPower       CommandKind = "SET_POWER"
	CmdSetTemperature CommandKind = "SET_TEMPERATURE"
	CmdSetFanMode     CommandKind = "SET_FAN_MODE"
	CmdSetHvacMode    CommandKind = "SET_HVAC_MODE"
)

// Command is a validated control intent. Commands are transient: built per
// user action by one of the constructors below, consumed by a single send.
type Command struct {
	Kind    CommandKind
	Power   bool
	TargetC float64
	Fan     FanSpeed
	Mode    Mode
}

// NewPowerCommand builds a power on/off command.
func NewPowerCommand(on bool) Command {
	return Command{Kind: CmdSetPower, Power: on}
}

// NewTemperatureCommand rounds t to the nearest 0.5 °C and rejects values
// whose rounded result falls outside [16.0, 30.0]. Out-of-range input is an
// error, not a silent clamp.
func NewTemperatureCommand(t float64) (Command, error) {
	rounded := math.Round(t*2) / 2
	if rounded < MinSetpointC || rounded > MaxSetpointC {
		return Command{}, fmt.Errorf("%w: temperature %.1f outside [%.1f, %.1f]",
			ErrInvalidInput, t, MinSetpointC, MaxSetpointC)
	}
	return Command{Kind: CmdSetTemperature, TargetC: rounded}, nil
}

// NewFanCommand builds a fan-speed command, rejecting unknown speeds.
func NewFanCommand(f FanSpeed) (Command, error) {
	if !f.Valid() {
		return Command{}, fmt.Errorf("%w: fan speed %q", ErrInvalidInput, f)
	}
	return Command{Kind: CmdSetFanMode, Fan: f}, nil
}

// NewModeCommand builds an operation-mode command, rejecting unknown modes.
func NewModeCommand(m Mode) (Command, error) {
	if !m.Valid() {
		return Command{}, fmt.Errorf("%w: mode %q", ErrInvalidInput, m)
	}
	return Command{Kind: CmdSetHvacMode, Mode: m}, nil
}
