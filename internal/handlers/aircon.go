package handlers

import (
	"errors"
	"net/http"

	bridge "aircon_bridge"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK         = "ok"
	statusRefreshing = "refreshing"
	statusPowerSet   = "power_set"
	statusTempSet    = "temperature_set"
	statusFanSet     = "fan_set"
	statusModeSet    = "mode_set"

	errNoStateYet      = "no device state available yet"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusForError maps the domain error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var devErr *bridge.DeviceError
	switch {
	case errors.Is(err, bridge.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, bridge.ErrNoState):
		return http.StatusServiceUnavailable
	case errors.Is(err, bridge.ErrDeviceUnreachable):
		return http.StatusGatewayTimeout
	case errors.As(err, &devErr),
		errors.Is(err, bridge.ErrMalformedResponse),
		errors.Is(err, bridge.ErrEncode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status and include the current snapshot if available
// (best-effort; the cache still holds the pre-command state until the
// follow-up refresh lands).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, ok := h.services.Monitoring.Snapshot(); ok {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTOs. Pointers distinguish "absent" from zero values.
type powerRequest struct {
	On *bool `json:"on" binding:"required"`
}

type temperatureRequest struct {
	TargetC *float64 `json:"target_c" binding:"required"`
}

type fanRequest struct {
	FanMode string `json:"fan_mode" binding:"required"` // 1..5 | Auto | Quiet
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // Auto | Cool | Heat | FanOnly | Dry
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get cached device state
// @Description  Returns the last confirmed snapshot plus refresh metadata; never triggers a device call.
// @Tags         aircon
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "state, last_refreshed, last_error"
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/aircon/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, ok := h.services.Monitoring.Snapshot()
	if !ok {
		resp := gin.H{"error": errNoStateYet}
		if err := h.services.Monitoring.LastError(); err != nil {
			resp["last_error"] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp := gin.H{
		"state":          st,
		"last_refreshed": h.services.Monitoring.LastRefreshed(),
	}
	// A failed refresh downgrades to stale-but-available; expose it.
	if err := h.services.Monitoring.LastError(); err != nil {
		resp["last_error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Request an immediate refresh
// @Description  Coalesces onto an in-flight fetch when one exists.
// @Tags         aircon
// @Produce      json
// @Success      202  {object}  map[string]interface{}  "status, coalesced"
// @Router       /api/v1/aircon/refresh [post]
func (h *Handler) requestRefresh(c *gin.Context) {
	started := h.services.Monitoring.RequestRefresh()
	c.JSON(http.StatusAccepted, gin.H{
		"status":    statusRefreshing,
		"coalesced": !started,
	})
}

// @Summary      Set power
// @Tags         aircon
// @Accept       json
// @Produce      json
// @Param        body  body  powerRequest  true  "Power payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/aircon/power [post]
func (h *Handler) setPower(c *gin.Context) {
	var req powerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Climate.SetPower(c.Request.Context(), *req.On); err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "set_power_failed", err, "on", *req.On)
		return
	}
	h.respondWithStatusAndState(c, statusPowerSet, gin.H{"on": *req.On})
}

// @Summary      Set target temperature
// @Description  Rounded to the nearest 0.5 °C; rejected outside [16.0, 30.0].
// @Tags         aircon
// @Accept       json
// @Produce      json
// @Param        body  body  temperatureRequest  true  "Temperature payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/aircon/temperature [post]
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Climate.SetTemperature(c.Request.Context(), *req.TargetC); err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "set_temperature_failed", err, "target_c", *req.TargetC)
		return
	}
	h.respondWithStatusAndState(c, statusTempSet, gin.H{"target_c": *req.TargetC})
}

// @Summary      Set fan mode
// @Tags         aircon
// @Accept       json
// @Produce      json
// @Param        body  body  fanRequest  true  "Fan payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/aircon/fan [post]
func (h *Handler) setFanMode(c *gin.Context) {
	var req fanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Climate.SetFanMode(c.Request.Context(), bridge.FanSpeed(req.FanMode)); err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "set_fan_failed", err, "fan_mode", req.FanMode)
		return
	}
	h.respondWithStatusAndState(c, statusFanSet, gin.H{"fan_mode": req.FanMode})
}

// @Summary      Set HVAC mode
// @Tags         aircon
// @Accept       json
// @Produce      json
// @Param        body  body  modeRequest  true  "Mode payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/aircon/mode [post]
func (h *Handler) setHvacMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Climate.SetHvacMode(c.Request.Context(), bridge.Mode(req.Mode)); err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "set_mode_failed", err, "mode", req.Mode)
		return
	}
	h.respondWithStatusAndState(c, statusModeSet, gin.H{"mode": req.Mode})
}
