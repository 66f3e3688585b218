package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Telemetry metric names, mirroring the unit's read-only values one to one.
const (
	metricSetpoint    = "setpoint"
	metricTemperature = "temperature"
	metricHumidity    = "humidity"
	metricFanSpeed    = "fan_speed"
	metricMode        = "mode"
	metricPower       = "power"
)

// @Summary      Read one telemetry value
// @Description  Per-metric read-only view over the cached snapshot. Metrics: setpoint, temperature, humidity, fan_speed, mode, power.
// @Tags         aircon
// @Produce      json
// @Param        metric  path  string  true  "Metric name"
// @Success      200  {object}  map[string]interface{}  "metric, value, captured_at"
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/aircon/telemetry/{metric} [get]
func (h *Handler) getTelemetry(c *gin.Context) {
	st, ok := h.services.Monitoring.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoStateYet})
		return
	}

	metric := c.Param("metric")
	var value interface{}
	switch metric {
	case metricSetpoint:
		value = st.SetpointC
	case metricTemperature:
		value = st.IndoorTempC
	case metricHumidity:
		value = st.HumidityPct
	case metricFanSpeed:
		value = st.FanSpeed
	case metricMode:
		value = st.Mode
	case metricPower:
		value = st.Power
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown metric: " + metric})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":      metric,
		"value":       value,
		"captured_at": st.CapturedAt,
	})
}
