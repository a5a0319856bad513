// Package wifi brings up the node's software access point through the HAL
// runtime. It owns parameter validation; the HAL applies whatever it is
// handed.
package wifi

import (
	"fmt"
	"log/slog"

	"esphub/sensornode/internal/config"
	"esphub/sensornode/internal/hal"
)

const (
	maxSSIDLen     = 32
	minWPA2PassLen = 8
	maxWPA2PassLen = 63
	maxChannel     = 13
)

// AccessPoint is a started software AP.
type AccessPoint struct {
	Info hal.NetifInfo
	cfg  hal.AccessPointConfig
}

// StartAccessPoint validates cfg, starts the AP through the HAL, and logs
// the resulting interface address. The HAL must be patched first; starting
// an AP during bootstrap is a contract violation.
func StartAccessPoint(cfg config.WiFiConfig) (*AccessPoint, error) {
	apCfg, err := buildAPConfig(cfg)
	if err != nil {
		return nil, err
	}

	info, err := hal.StartAccessPoint(apCfg)
	if err != nil {
		return nil, fmt.Errorf("starting access point: %w", err)
	}
	slog.Info("WiFi started in Access Point mode",
		"ssid", apCfg.SSID,
		"auth", apCfg.AuthMode.String(),
		"channel", apCfg.Channel,
	)
	slog.Info("AP netif up", "ip", info.IP.String())

	return &AccessPoint{Info: info, cfg: apCfg}, nil
}

// buildAPConfig maps the node config onto a radio-level AP configuration.
//
//   - SSID: 1–32 bytes
//   - password: empty → open network; otherwise WPA2-Personal, 8–63 chars
//   - channel: 1–13, 0 meaning "use channel 1"
func buildAPConfig(cfg config.WiFiConfig) (hal.AccessPointConfig, error) {
	if cfg.SSID == "" {
		return hal.AccessPointConfig{}, fmt.Errorf("SSID must not be empty")
	}
	if len(cfg.SSID) > maxSSIDLen {
		return hal.AccessPointConfig{}, fmt.Errorf("SSID too long (max %d bytes)", maxSSIDLen)
	}

	auth := hal.AuthOpen
	if cfg.Password != "" {
		if len(cfg.Password) < minWPA2PassLen || len(cfg.Password) > maxWPA2PassLen {
			return hal.AccessPointConfig{}, fmt.Errorf(
				"WPA2 password must be %d..=%d characters", minWPA2PassLen, maxWPA2PassLen)
		}
		auth = hal.AuthWPA2Personal
	}

	channel := cfg.Channel
	if channel == 0 {
		channel = 1
	}
	if channel < 1 || channel > maxChannel {
		return hal.AccessPointConfig{}, fmt.Errorf("channel must be 1..=%d, got %d", maxChannel, channel)
	}

	maxStations := cfg.MaxStations
	if maxStations <= 0 {
		maxStations = 4
	}

	return hal.AccessPointConfig{
		SSID:        cfg.SSID,
		Password:    cfg.Password,
		AuthMode:    auth,
		Channel:     channel,
		Hidden:      cfg.Hidden,
		MaxStations: maxStations,
	}, nil
}
