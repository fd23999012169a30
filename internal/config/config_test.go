package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/promptpulse/internal/models"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("backend:\n  base_url: https://pulse.example.com\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://pulse.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "Tesla", cfg.Backend.DefaultBrand)
	assert.Equal(t, []string{"Ford", "GM", "Rivian", "Mercedes", "BMW"}, cfg.Backend.DefaultCompetitors)
	assert.Equal(t, 60*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 3, cfg.Analysis.MaxPrompts)
	assert.Equal(t, 5, cfg.Analysis.OpportunityLimit)
	assert.Empty(t, cfg.Panel)
}

func TestParseExpandsPanelKeys(t *testing.T) {
	t.Setenv("PULSE_TEST_KEY", "sk-test-1234567890")

	doc := `
panel:
  - name: CHATGPT
    provider: openai
    model: gpt-4o-mini
    api_key: ${PULSE_TEST_KEY}
    enabled: true
  - name: LOCAL
    provider: ollama
    model: llama3
    enabled: false
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg.Panel, 2)

	assert.Equal(t, "sk-test-1234567890", cfg.Panel[0].APIKey)
	enabled := cfg.EnabledPanel()
	require.Len(t, enabled, 1)
	assert.Equal(t, "CHATGPT", enabled[0].Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "localhost:8000" },
			wantErr: "base_url",
		},
		{
			name: "duplicate panel names",
			mutate: func(c *Config) {
				c.Panel = append(c.Panel, c.Panel[0])
			},
			wantErr: "duplicate panel member",
		},
		{
			name: "bad cron",
			mutate: func(c *Config) {
				c.Schedules = append(c.Schedules, scheduleFixture("0 9 * *"))
			},
			wantErr: "invalid cron expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend.DefaultBrand = "Rivian"
	cfg.Schedules = append(cfg.Schedules, scheduleFixture("0 9 * * 1"))
	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Rivian", loaded.Backend.DefaultBrand)
	require.Len(t, loaded.Schedules, 1)
	assert.Equal(t, "0 9 * * 1", loaded.Schedules[0].CronExpr)
}

func TestGetConfigPathHonorsEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/tmp/pulse.yaml")
	assert.Equal(t, "/tmp/pulse.yaml", GetConfigPath())
}

func scheduleFixture(cron string) models.Schedule {
	return models.Schedule{
		Name:     "weekly-ev",
		CronExpr: cron,
		Prompts:  []string{"best EV charging network"},
		Enabled:  true,
	}
}
