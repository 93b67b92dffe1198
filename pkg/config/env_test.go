package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "encouragement", cfg.DefaultTopic)
	assert.Equal(t, "07:30", cfg.DefaultMorning)
	assert.Equal(t, 587, cfg.SmtpPort)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TIMEZONE", "Africa/Lagos")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("SEARCH_CACHE_TTL", "1m")
	t.Setenv("MAX_CONCURRENT_SENDS", "4")
	t.Setenv("SEND_TIMEOUT", "soon")
	t.Setenv("SMTP_PORT", "not-a-port")

	cfg := LoadConfig()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 4, cfg.MaxConcurrentSends)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout, "invalid duration falls back")
	assert.Equal(t, 587, cfg.SmtpPort, "invalid int falls back")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Lagos", loc.String())
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	_, err := cfg.Location()
	assert.Error(t, err)
}
