// Package metrics exposes the coordinator's cached snapshot as Prometheus
// gauges. Collect reads only the cache; scrapes never touch the device.
package metrics

import (
	"time"

	bridge "aircon_bridge"

	"github.com/prometheus/client_golang/prometheus"
)

// Source is the read-only slice of the coordinator the collector needs.
type Source interface {
	Snapshot() (bridge.DeviceState, bool)
	LastRefreshed() time.Time
	LastError() error
}

// Collector collects air-conditioner telemetry.
type Collector struct {
	source Source

	stateAvailable prometheus.Gauge
	refreshOK      prometheus.Gauge
	lastRefresh    prometheus.Gauge

	powerOn     prometheus.Gauge
	setpointC   prometheus.Gauge
	indoorTempC prometheus.Gauge
	humidityPct prometheus.Gauge

	modeInfo *prometheus.GaugeVec
	fanInfo  *prometheus.GaugeVec
}

func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		stateAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_state_available",
			Help: "1 if at least one successful fetch has completed",
		}),
		refreshOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_refresh_success",
			Help: "Last refresh success (1=ok, 0=error)",
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_last_refresh_timestamp_seconds",
			Help: "Last successful refresh timestamp (epoch seconds)",
		}),
		powerOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_power_on",
			Help: "Unit power state (1=on, 0=off)",
		}),
		setpointC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_setpoint_celsius",
			Help: "Target temperature (°C)",
		}),
		indoorTempC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_indoor_temperature_celsius",
			Help: "Indoor temperature (°C)",
		}),
		humidityPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aircon_indoor_humidity_percent",
			Help: "Indoor relative humidity (%)",
		}),
		modeInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aircon_mode",
			Help: "Current operation mode (1 on the active label)",
		}, []string{"mode"}),
		fanInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aircon_fan_mode",
			Help: "Current fan mode (1 on the active label)",
		}, []string{"fan_mode"}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st, ok := c.source.Snapshot()

	if c.source.LastError() == nil {
		c.refreshOK.Set(1)
	} else {
		c.refreshOK.Set(0)
	}

	c.modeInfo.Reset()
	c.fanInfo.Reset()

	if ok {
		c.stateAvailable.Set(1)
		c.lastRefresh.Set(float64(c.source.LastRefreshed().Unix()))
		if st.Power {
			c.powerOn.Set(1)
		} else {
			c.powerOn.Set(0)
		}
		c.setpointC.Set(st.SetpointC)
		c.indoorTempC.Set(st.IndoorTempC)
		c.humidityPct.Set(float64(st.HumidityPct))
		c.modeInfo.WithLabelValues(string(st.Mode)).Set(1)
		c.fanInfo.WithLabelValues(string(st.FanSpeed)).Set(1)
	} else {
		c.stateAvailable.Set(0)
	}

	c.collectAll(ch, ok)
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric, hasState bool) {
	c.stateAvailable.Collect(ch)
	c.refreshOK.Collect(ch)
	if !hasState {
		return
	}
	c.lastRefresh.Collect(ch)
	c.powerOn.Collect(ch)
	c.setpointC.Collect(ch)
	c.indoorTempC.Collect(ch)
	c.humidityPct.Collect(ch)
	c.modeInfo.Collect(ch)
	c.fanInfo.Collect(ch)
}
