// Package mqttpub publishes refreshed snapshots to an MQTT broker. It is an
// optional telemetry consumer: when no broker is configured the daemon runs
// without it.
package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bridge "aircon_bridge"
	"aircon_bridge/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultTopic    = "aircon/state"
	defaultClientID = "aircon-bridge"
	connectTimeout  = 10 * time.Second
	disconnectWait  = 250 // ms
)

// Subscriber is the slice of the coordinator the publisher consumes.
type Subscriber interface {
	Subscribe() (string, <-chan bridge.DeviceState)
	Unsubscribe(id string)
}

// Config carries broker settings; BrokerURL is required
// (e.g. tcp://broker:1883).
type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
}

// Publisher forwards each snapshot as a retained JSON message, so new MQTT
// consumers pick up the last-known state immediately.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    *logger.Logger
}

// NewPublisher connects to the broker. Auto-reconnect stays on for the
// lifetime of the publisher; a broker outage drops messages but never blocks
// the coordinator.
func NewPublisher(cfg Config, log *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.BrokerURL) == "" {
		return nil, fmt.Errorf("mqtt broker url is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker: %w", token.Error())
	}

	return &Publisher{client: client, topic: topic, log: log}, nil
}

// Run forwards refreshed snapshots until ctx is canceled, then disconnects.
func (p *Publisher) Run(ctx context.Context, source Subscriber) {
	id, updates := source.Subscribe()
	defer source.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			p.client.Disconnect(disconnectWait)
			return
		case st := <-updates:
			p.publish(st)
		}
	}
}

func (p *Publisher) publish(st bridge.DeviceState) {
	payload, err := json.Marshal(st)
	if err != nil {
		if p.log != nil {
			p.log.Errorw("mqtt_marshal_failed", "err", err)
		}
		return
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	token.Wait()
	if err := token.Error(); err != nil && p.log != nil {
		p.log.Warnw("mqtt_publish_failed", "topic", p.topic, "err", err)
	}
}
