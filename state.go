package aircon_bridge

import "time"

// Mode is the unit's operation mode. Codes the firmware reports that we
// don't recognize decode to ModeUnknown instead of failing the read.
type Mode string

const (
	ModeAuto    Mode = "Auto"
	ModeCool    Mode = "Cool"
	ModeHeat    Mode = "Heat"
	ModeFanOnly Mode = "FanOnly"
	ModeDry     Mode = "Dry"
	ModeUnknown Mode = "Unknown"
)

// Valid reports whether m is one of the settable operation modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeCool, ModeHeat, ModeFanOnly, ModeDry:
		return true
	}
	return false
}

// FanSpeed is the unit's fan setting: fixed speeds 1-5 plus Auto and Quiet.
type FanSpeed string

const (
	Fan1       FanSpeed = "1"
	Fan2       FanSpeed = "2"
	Fan3       FanSpeed = "3"
	Fan4       FanSpeed = "4"
	Fan5       FanSpeed = "5"
	FanAuto    FanSpeed = "Auto"
	FanQuiet   FanSpeed = "Quiet"
	FanUnknown FanSpeed = "Unknown"
)

// Valid reports whether f is one of the settable fan speeds.
func (f FanSpeed) Valid() bool {
	switch f {
	case Fan1, Fan2, Fan3, Fan4, Fan5, FanAuto, FanQuiet:
		return true
	}
	return false
}

// Setpoint bounds and granularity supported by the unit.
const (
	MinSetpointC  = 16.0
	MaxSetpointC  = 30.0
	SetpointStepC = 0.5
)

// DeviceState is one decoded snapshot of the unit. Snapshots are value
// copies; consumers never share a live reference with the coordinator.
type DeviceState struct {
	Power       bool      `json:"power"`
	Mode        Mode      `json:"mode"`
	FanSpeed    FanSpeed  `json:"fan_speed"`
	SetpointC   float64   `json:"setpoint_c"`    // °C, 0.5 steps within [16.0, 30.0]
	IndoorTempC float64   `json:"indoor_temp_c"` // °C, device-reported; may exceed the control range
	HumidityPct int       `json:"humidity_pct"`  // %
	CapturedAt  time.Time `json:"captured_at"`
}
