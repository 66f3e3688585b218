package aircon_bridge

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the codec, the device client and the service
// layer. All failures are scoped to one fetch or command attempt; nothing
// here is fatal to the process.
var (
	// ErrDeviceUnreachable covers network-level failures: connection
	// refused, DNS, timeouts.
	ErrDeviceUnreachable = errors.New("device unreachable")

	// ErrMalformedResponse covers decode failures: bad JSON, missing
	// required nodes, unparseable hex values.
	ErrMalformedResponse = errors.New("malformed device response")

	// ErrInvalidInput is returned by command constructors when a value is
	// outside its domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEncode is returned when a command or base snapshot carries a
	// value the wire format has no code for.
	ErrEncode = errors.New("cannot encode frame")

	// ErrNoState means no successful fetch has completed yet, so there is
	// no base snapshot to build a command frame from.
	ErrNoState = errors.New("no device state available")
)

// DeviceError is returned when the unit answered with a non-success HTTP
// status.
type DeviceError struct {
	Status int
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device returned status %d", e.Status)
}
