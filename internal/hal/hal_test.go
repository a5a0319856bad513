package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The patch table is process-global, so the unlinked→linked lifecycle is
// covered by one sequential test. Subtests run in declaration order; no
// t.Parallel here.
func TestPatchTableLifecycle(t *testing.T) {
	t.Run("calls before linking fail", func(t *testing.T) {
		_, err := ReadSensor()
		assert.ErrorIs(t, err, ErrNotPatched)

		_, err = StartAccessPoint(AccessPointConfig{SSID: "x"})
		assert.ErrorIs(t, err, ErrNotPatched)
	})

	t.Run("link once succeeds", func(t *testing.T) {
		require.NoError(t, LinkPatches())
	})

	t.Run("calls after linking resolve", func(t *testing.T) {
		s, err := ReadSensor()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Temperature, 20.0)
		assert.Less(t, s.Temperature, 30.0)
		assert.GreaterOrEqual(t, s.Humidity, 50.0)
		assert.Less(t, s.Humidity, 70.0)

		info, err := StartAccessPoint(AccessPointConfig{SSID: "bench", Channel: 1})
		require.NoError(t, err)
		assert.Equal(t, defaultAPAddr, info.IP.String())
	})

	t.Run("second link is rejected", func(t *testing.T) {
		assert.ErrorIs(t, LinkPatches(), ErrAlreadyPatched)
	})
}

func TestAuthModeString(t *testing.T) {
	assert.Equal(t, "open", AuthOpen.String())
	assert.Equal(t, "wpa2-personal", AuthWPA2Personal.String())
}
