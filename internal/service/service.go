package service

import (
	"context"
	"time"

	bridge "aircon_bridge"
	"aircon_bridge/internal/logger"
)

// Climate exposes control operations: power, setpoint, fan and HVAC mode.
type Climate interface {
	SetPower(ctx context.Context, on bool) error
	SetTemperature(ctx context.Context, targetC float64) error
	SetFanMode(ctx context.Context, fan bridge.FanSpeed) error
	SetHvacMode(ctx context.Context, mode bridge.Mode) error
}

// Monitoring exposes read-only views over the coordinator's cache plus the
// coalesced refresh trigger. Snapshot never blocks on an in-flight fetch.
type Monitoring interface {
	Snapshot() (bridge.DeviceState, bool)
	LastRefreshed() time.Time
	LastError() error
	RequestRefresh() bool
	Subscribe() (string, <-chan bridge.DeviceState)
	Unsubscribe(id string)
}

// Fetcher is the read half of the device client.
type Fetcher interface {
	FetchState(ctx context.Context) (bridge.DeviceState, error)
}

// CommandSender is the write half of the device client.
type CommandSender interface {
	SendCommand(ctx context.Context, cmd bridge.Command, base bridge.DeviceState) error
}

// Service aggregates the sub-services the HTTP layer depends on.
type Service struct {
	Climate
	Monitoring
}

// NewService wires the device client and coordinator into the composed
// service. The coordinator doubles as the Monitoring implementation.
func NewService(sender CommandSender, coord *Coordinator, log *logger.Logger) *Service {
	return &Service{
		Climate:    NewClimateService(sender, coord, log),
		Monitoring: coord,
	}
}
