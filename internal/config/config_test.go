package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 360, cfg.MaxSchedulePeriods)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.RateStructures)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_SCHEDULE_PERIODS", "480")
	t.Setenv("MAX_RATE", "35.5")
	t.Setenv("REDIS_TTL", "90m")
	t.Setenv("MAX_TIERS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://calc.example.com,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 480, cfg.MaxSchedulePeriods)
	assert.Equal(t, 35.5, cfg.MaxRate)
	assert.Equal(t, 90*time.Minute, cfg.RedisTTL)
	assert.Equal(t, 20, cfg.MaxTiers)
	assert.Equal(t, []string{"http://localhost:5173", "https://calc.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
}

const ratesYAML = `
rate_structures:
  - name: tiered-bank
    tiers:
      - threshold: 0
        rate: 3
      - threshold: 10000
        rate: 4
      - threshold: 50000
        rate: 4.5
  - name: flat-bank
    tiers:
      - threshold: 0
        rate: 3.5
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRateStructures(t *testing.T) {
	structures, err := LoadRateStructures(writeFile(t, ratesYAML))
	require.NoError(t, err)
	require.Len(t, structures, 2)

	assert.Equal(t, "tiered-bank", structures[0].Name)
	require.Len(t, structures[0].Tiers, 3)
	assert.Equal(t, TierConfig{Threshold: 50000, Rate: 4.5}, structures[0].Tiers[2])
	assert.Equal(t, 3.5, structures[1].Tiers[0].Rate)
}

func TestLoadRateStructures_Errors(t *testing.T) {
	_, err := LoadRateStructures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadRateStructures(writeFile(t, "rate_structures: [oops"))
	assert.Error(t, err)

	_, err = LoadRateStructures(writeFile(t, "rate_structures:\n  - tiers: []\n"))
	assert.Error(t, err)

	dup := "rate_structures:\n  - name: a\n  - name: a\n"
	_, err = LoadRateStructures(writeFile(t, dup))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadConfig_WithRateStructuresFile(t *testing.T) {
	t.Setenv("RATE_STRUCTURES_FILE", writeFile(t, ratesYAML))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Len(t, cfg.RateStructures, 2)

	rs, ok := cfg.RateStructureByName("flat-bank")
	assert.True(t, ok)
	assert.Len(t, rs.Tiers, 1)

	_, ok = cfg.RateStructureByName("unknown")
	assert.False(t, ok)
}
