package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
twofactor:
  issuer: Acme
  totp:
    period: 30
    forward_drift: 1
  rate_limit:
    threshold: 10
  replay_ttl: 90
server:
  cors: "http://a.test, ,http://b.test"
telemetry:
  enabled: true
  sample_ratio: 0.25
`

func TestNewViperFromBytes(t *testing.T) {
	t.Run("ReadsTypedValues", func(t *testing.T) {
		// Arrange & Act
		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "Acme", cfg.GetString("twofactor.issuer"))
		assert.Equal(t, uint(30), cfg.GetUint("twofactor.totp.period"))
		assert.Equal(t, 1, cfg.GetInt("twofactor.totp.forward_drift"))
		assert.Equal(t, int32(10), cfg.GetInt32("twofactor.rate_limit.threshold"))
		assert.Equal(t, int64(10), cfg.GetInt64("twofactor.rate_limit.threshold"))
		assert.Equal(t, 90*time.Second, cfg.GetSecond("twofactor.replay_ttl"))
		assert.Equal(t, 90*time.Minute, cfg.GetMinute("twofactor.replay_ttl"))
		assert.Equal(t, 90*time.Millisecond, cfg.GetMillisecond("twofactor.replay_ttl"))
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetArray("server.cors"))
		assert.True(t, cfg.GetBool("telemetry.enabled"))
		assert.InDelta(t, 0.25, cfg.GetFloat64("telemetry.sample_ratio"), 0.0001)
		assert.True(t, cfg.IsSet("twofactor.issuer"))
		assert.False(t, cfg.IsSet("twofactor.missing"))
		assert.NoError(t, cfg.Close())
	})

	t.Run("RequiresType", func(t *testing.T) {
		_, err := NewViperFromBytes(" ", []byte(sampleYAML))
		assert.ErrorIs(t, err, ErrConfigTypeRequired)
	})

	t.Run("DefaultsFillMissingKeys", func(t *testing.T) {
		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithDefaults(map[string]any{
			"twofactor.hotp.max_counter": 100,
			"twofactor.issuer":           "ignored",
		}))
		require.NoError(t, err)

		assert.Equal(t, 100, cfg.GetInt("twofactor.hotp.max_counter"))
		assert.Equal(t, "Acme", cfg.GetString("twofactor.issuer"))
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		t.Setenv("TF_TWOFACTOR_ISSUER", "FromEnv")

		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithEnvPrefix("TF"))
		require.NoError(t, err)

		assert.Equal(t, "FromEnv", cfg.GetString("twofactor.issuer"))
	})

	t.Run("DotEnvFeedsEnvironment", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("TFD_TWOFACTOR_ISSUER=Dotted\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("TFD_TWOFACTOR_ISSUER") })

		// Act
		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML),
			WithDotEnv(filepath.Join(dir, "missing.env"), envFile),
			WithEnvPrefix("TFD"),
		)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Dotted", cfg.GetString("twofactor.issuer"))
	})
}

func TestNewViper(t *testing.T) {
	t.Run("LoadsFileByPath", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

		cfg, err := NewViper(file, WithoutWatch())
		require.NoError(t, err)

		assert.Equal(t, "Acme", cfg.GetString("twofactor.issuer"))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"), WithoutWatch())
		assert.Error(t, err)
	})
}
