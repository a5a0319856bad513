package wifi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esphub/sensornode/internal/config"
	"esphub/sensornode/internal/hal"
)

func TestBuildAPConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.WiFiConfig
		want    hal.AccessPointConfig
		wantErr string
	}{
		{
			name: "wpa2 defaults",
			cfg:  config.WiFiConfig{SSID: "ESP32-S3-DEMO", Password: "password123", Channel: 1, MaxStations: 4},
			want: hal.AccessPointConfig{
				SSID:        "ESP32-S3-DEMO",
				Password:    "password123",
				AuthMode:    hal.AuthWPA2Personal,
				Channel:     1,
				MaxStations: 4,
			},
		},
		{
			name: "empty password means open network",
			cfg:  config.WiFiConfig{SSID: "lab", Channel: 6},
			want: hal.AccessPointConfig{
				SSID:        "lab",
				AuthMode:    hal.AuthOpen,
				Channel:     6,
				MaxStations: 4,
			},
		},
		{
			name: "zero channel falls back to 1",
			cfg:  config.WiFiConfig{SSID: "lab"},
			want: hal.AccessPointConfig{
				SSID:        "lab",
				AuthMode:    hal.AuthOpen,
				Channel:     1,
				MaxStations: 4,
			},
		},
		{
			name:    "empty ssid rejected",
			cfg:     config.WiFiConfig{},
			wantErr: "SSID must not be empty",
		},
		{
			name:    "ssid too long",
			cfg:     config.WiFiConfig{SSID: strings.Repeat("a", 33)},
			wantErr: "SSID too long",
		},
		{
			name:    "password too short for wpa2",
			cfg:     config.WiFiConfig{SSID: "lab", Password: "short"},
			wantErr: "WPA2 password",
		},
		{
			name:    "password too long for wpa2",
			cfg:     config.WiFiConfig{SSID: "lab", Password: strings.Repeat("p", 64)},
			wantErr: "WPA2 password",
		},
		{
			name:    "channel out of range",
			cfg:     config.WiFiConfig{SSID: "lab", Channel: 14},
			wantErr: "channel must be",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildAPConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStartAccessPoint_RequiresLinkedRuntime(t *testing.T) {
	// The HAL in this test binary is never patched, so bring-up must fail
	// with the not-patched sentinel — the ordering contract made visible.
	_, err := StartAccessPoint(config.WiFiConfig{SSID: "lab"})
	require.Error(t, err)
	assert.ErrorIs(t, err, hal.ErrNotPatched)
}
