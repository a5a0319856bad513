package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the sensor node.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	WiFi      WiFiConfig      `mapstructure:"wifi"`
	Sensor    SensorConfig    `mapstructure:"sensor"`
	Uplink    UplinkConfig    `mapstructure:"uplink"`
	Flash     FlashConfig     `mapstructure:"flash"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	ServiceName  string `mapstructure:"service_name"`
	LogLevel     string `mapstructure:"log_level"`
}

// WiFiConfig configures the software access point. An empty password means
// an open network.
type WiFiConfig struct {
	SSID        string `mapstructure:"ssid"`
	Password    string `mapstructure:"password"`
	Channel     int    `mapstructure:"channel"`
	Hidden      bool   `mapstructure:"hidden"`
	MaxStations int    `mapstructure:"max_stations"`
}

type SensorConfig struct {
	Period time.Duration `mapstructure:"period"`
}

// UplinkConfig configures the NATS reading uplink. An empty URL disables it.
type UplinkConfig struct {
	URL    string `mapstructure:"url"`
	NodeID string `mapstructure:"node_id"`
}

// FlashConfig holds the serial-port defaults for the flash and monitor
// tooling commands.
type FlashConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

// Load reads config from the optional YAML file at path, then overlays
// environment variables with the SENSORNODE_ prefix
// (e.g. SENSORNODE_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SENSORNODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", true)
	v.SetDefault("telemetry.service_name", "sensornode")
	v.SetDefault("telemetry.log_level", "info")

	v.SetDefault("wifi.ssid", "ESP32-S3-DEMO")
	v.SetDefault("wifi.password", "password123")
	v.SetDefault("wifi.channel", 1)
	v.SetDefault("wifi.hidden", false)
	v.SetDefault("wifi.max_stations", 4)

	v.SetDefault("sensor.period", 5*time.Second)

	v.SetDefault("uplink.url", "")
	v.SetDefault("uplink.node_id", "node-0")

	v.SetDefault("flash.port", "/dev/ttyUSB0")
	v.SetDefault("flash.baud", 921600)
}
