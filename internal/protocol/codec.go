package protocol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	bridge "aircon_bridge"
)

// Hex codes for the closed enum sets. Codes not listed here decode to the
// Unknown variants; newer firmware may introduce values we don't know yet.
var fanCodes = map[string]bridge.FanSpeed{
	"0300": bridge.Fan1,
	"0400": bridge.Fan2,
	"0500": bridge.Fan3,
	"0600": bridge.Fan4,
	"0700": bridge.Fan5,
	"0A00": bridge.FanAuto,
	"0B00": bridge.FanQuiet,
}

var modeCodes = map[string]bridge.Mode{
	"0300": bridge.ModeAuto,
	"0200": bridge.ModeCool,
	"0100": bridge.ModeHeat,
	"0000": bridge.ModeFanOnly,
	"0500": bridge.ModeDry,
}

var (
	fanHex  = reverse(fanCodes)
	modeHex = reverse(modeCodes)
)

func reverse[V comparable](m map[string]V) map[V]string {
	out := make(map[V]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

const (
	powerOff = "00"
	powerOn  = "01"
)

// ReadRequest returns the fixed frame that asks the unit for its full
// status group.
func ReadRequest() []byte {
	raw, _ := json.Marshal(requestEnvelope{
		Requests: []request{{Op: opRead, To: statusTarget}},
	})
	return raw
}

// EncodeCommand builds a full outgoing write frame: the unit requires every
// addressable control value on each write, so the frame is rebuilt from the
// base snapshot with only the fields implied by cmd changed. Values outside
// their domain fail with ErrEncode; command constructors are the primary
// validation path, this is the invariant check.
func EncodeCommand(cmd bridge.Command, base bridge.DeviceState) ([]byte, error) {
	power := base.Power
	mode := base.Mode
	fan := base.FanSpeed
	setpoint := base.SetpointC

	switch cmd.Kind {
	case bridge.CmdSetPower:
		power = cmd.Power
	case bridge.CmdSetTemperature:
		setpoint = cmd.TargetC
	case bridge.CmdSetFanMode:
		fan = cmd.Fan
	case bridge.CmdSetHvacMode:
		mode = cmd.Mode
	default:
		return nil, fmt.Errorf("%w: unknown command kind %q", bridge.ErrEncode, cmd.Kind)
	}

	modeCode, ok := modeHex[mode]
	if !ok {
		return nil, fmt.Errorf("%w: mode %q has no protocol code", bridge.ErrEncode, mode)
	}
	fanCode, ok := fanHex[fan]
	if !ok {
		return nil, fmt.Errorf("%w: fan speed %q has no protocol code", bridge.ErrEncode, fan)
	}
	setpointCode, err := encodeSetpoint(setpoint)
	if err != nil {
		return nil, err
	}

	powerCode := powerOff
	if power {
		powerCode = powerOn
	}

	pc := Node{Name: nodeRoot, Children: []Node{{
		Name: nodeUnit,
		Children: []Node{
			{Name: nodePower, Children: []Node{
				{Name: leafPower, Value: powerCode},
			}},
			{Name: nodeControl, Children: []Node{
				{Name: leafMode, Value: modeCode},
				{Name: leafSetpoint, Value: setpointCode},
				{Name: leafFan, Value: fanCode},
			}},
		},
	}}}

	raw, err := json.Marshal(requestEnvelope{
		Requests: []request{{Op: opWrite, To: statusTarget, Pc: &pc}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridge.ErrEncode, err)
	}
	return raw, nil
}

// DecodeResponse parses a status response into a DeviceState. Missing
// required nodes or unparseable hex fail with ErrMalformedResponse; an
// unrecognized mode or fan code decodes to the Unknown variant so that one
// unknown field never blocks temperature/humidity delivery. CapturedAt is
// left zero for the caller to stamp.
func DecodeResponse(raw []byte) (bridge.DeviceState, error) {
	var env responseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return bridge.DeviceState{}, fmt.Errorf("%w: %v", bridge.ErrMalformedResponse, err)
	}
	if len(env.Responses) == 0 || env.Responses[0].Pc == nil {
		return bridge.DeviceState{}, fmt.Errorf("%w: empty response envelope", bridge.ErrMalformedResponse)
	}

	root := env.Responses[0].Pc
	unit, ok := root.child(nodeUnit)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeUnit)
	}
	powerGroup, ok := unit.child(nodePower)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodePower)
	}
	control, ok := unit.child(nodeControl)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeControl)
	}
	sensors, ok := unit.child(nodeSensors)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeSensors)
	}

	var st bridge.DeviceState

	powerLeaf, ok := powerGroup.child(leafPower)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodePower + "/" + leafPower)
	}
	st.Power = powerLeaf.Value == powerOn

	modeLeaf, ok := control.child(leafMode)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeControl + "/" + leafMode)
	}
	if mode, known := modeCodes[modeLeaf.Value]; known {
		st.Mode = mode
	} else {
		st.Mode = bridge.ModeUnknown
	}

	fanLeaf, ok := control.child(leafFan)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeControl + "/" + leafFan)
	}
	if fan, known := fanCodes[fanLeaf.Value]; known {
		st.FanSpeed = fan
	} else {
		st.FanSpeed = bridge.FanUnknown
	}

	setpointLeaf, ok := control.child(leafSetpoint)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeControl + "/" + leafSetpoint)
	}
	rawSetpoint, err := decodeHexLE(setpointLeaf.Value)
	if err != nil {
		return bridge.DeviceState{}, fmt.Errorf("%w: setpoint %q: %v", bridge.ErrMalformedResponse, setpointLeaf.Value, err)
	}
	st.SetpointC = float64(rawSetpoint) / 2

	tempLeaf, ok := sensors.child(leafTemp)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeSensors + "/" + leafTemp)
	}
	rawTemp, err := decodeHexLE(tempLeaf.Value)
	if err != nil {
		return bridge.DeviceState{}, fmt.Errorf("%w: indoor temperature %q: %v", bridge.ErrMalformedResponse, tempLeaf.Value, err)
	}
	st.IndoorTempC = float64(rawTemp)

	humidityLeaf, ok := sensors.child(leafHumidity)
	if !ok {
		return bridge.DeviceState{}, missingNode(nodeSensors + "/" + leafHumidity)
	}
	rawHumidity, err := decodeHexLE(humidityLeaf.Value)
	if err != nil {
		return bridge.DeviceState{}, fmt.Errorf("%w: humidity %q: %v", bridge.ErrMalformedResponse, humidityLeaf.Value, err)
	}
	st.HumidityPct = rawHumidity

	return st, nil
}

func missingNode(path string) error {
	return fmt.Errorf("%w: missing node %s", bridge.ErrMalformedResponse, path)
}

// encodeSetpoint converts °C to the wire code: the value doubled, as a
// 2-byte little-endian hex string. Exact for every 0.5-step value in range.
func encodeSetpoint(t float64) (string, error) {
	doubled := t * 2
	if doubled != math.Trunc(doubled) {
		return "", fmt.Errorf("%w: setpoint %.2f is not a 0.5 multiple", bridge.ErrEncode, t)
	}
	if t < bridge.MinSetpointC || t > bridge.MaxSetpointC {
		return "", fmt.Errorf("%w: setpoint %.1f outside [%.1f, %.1f]",
			bridge.ErrEncode, t, bridge.MinSetpointC, bridge.MaxSetpointC)
	}
	return encodeHexLE(int(doubled), 2), nil
}

// decodeHexLE parses a little-endian hex string into an integer.
func decodeHexLE(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, err
	}
	if len(b) > 4 {
		return 0, fmt.Errorf("hex value %q wider than 4 bytes", s)
	}
	v := 0
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | int(b[i])
	}
	return v, nil
}

// encodeHexLE renders v as width little-endian bytes in uppercase hex.
func encodeHexLE(v, width int) string {
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
