package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"esphub/sensornode/internal/sensor"
)

// sensorSource is the subset of *sensor.Store used by the HTTP handlers.
// Declaring it as an interface allows test doubles to be injected.
type sensorSource interface {
	Snapshot() sensor.Reading
}

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	sensors sensorSource
	ready   func() bool
}

// Index handles GET / and GET /index.html with the embedded demo page.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// Sensor handles GET /api/sensor. It returns the latest reading as JSON.
func (h *Handler) Sensor(c *gin.Context) {
	c.JSON(http.StatusOK, h.sensors.Snapshot())
}

// Health handles GET /health.
// It always returns 200 — this is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready handles GET /ready.
// It returns 200 only once the bootstrap sequence reached its terminal
// state; 503 otherwise.
func (h *Handler) Ready(c *gin.Context) {
	if h.ready() {
		c.JSON(http.StatusOK, gin.H{"ready": true})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
}

// Favicon handles GET /favicon.ico with an empty 200.
func (h *Handler) Favicon(c *gin.Context) {
	c.Status(http.StatusOK)
}
