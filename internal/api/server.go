package api

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed assets/index.html
var indexHTML string

// Router wraps a configured Gin engine and exposes it as an http.Handler.
type Router struct {
	engine *gin.Engine
}

// NewRouter constructs a Router with the full middleware chain and all
// routes registered. Middleware order:
//  1. Recovery — panic → 500
//  2. Instrument — trace context per request
//  3. RequestLogger — structured request/response logging
func NewRouter(sensors sensorSource, ready func() bool, serviceName string) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(Recovery(slog.Default()))
	engine.Use(Instrument(serviceName))
	engine.Use(RequestLogger(slog.Default()))

	h := &Handler{sensors: sensors, ready: ready}

	engine.GET("/", h.Index)
	engine.GET("/index.html", h.Index)
	engine.GET("/api/sensor", h.Sensor)
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)

	// Empty 200 keeps browser favicon probes out of the 404 logs.
	engine.GET("/favicon.ico", h.Favicon)

	return &Router{engine: engine}
}

// Handler returns the underlying http.Handler for use with net/http servers.
func (r *Router) Handler() http.Handler {
	return r.engine
}
