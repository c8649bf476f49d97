package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchdesk/internal/config"
	"lunchdesk/internal/services"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"DB_NAME", "PORT", "TIMEZONE", "ORDER_CUTOFF_HOUR", "DAILY_ORDER_LIMIT", "DEFAULT_PRICE", "CURRENCY", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := config.FromEnv()

	assert.Equal(t, "lunchdesk", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Asia/Tbilisi", cfg.Timezone)
	assert.Equal(t, services.DefaultCutoffHour, cfg.OrderCutoffHour)
	assert.Equal(t, 4, cfg.DailyOrderLimit)
	assert.Equal(t, int64(1500), cfg.DefaultUnitPrice)
	assert.Equal(t, "GEL", cfg.Currency)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvOverridesAndRejectsOutOfRange(t *testing.T) {
	t.Setenv("ORDER_CUTOFF_HOUR", "12")
	t.Setenv("DAILY_ORDER_LIMIT", "zero")
	t.Setenv("DEFAULT_PRICE", "-5")
	t.Setenv("CURRENCY", "usd")

	cfg := config.FromEnv()

	assert.Equal(t, 12, cfg.OrderCutoffHour)
	assert.Equal(t, 4, cfg.DailyOrderLimit)
	assert.Equal(t, int64(1500), cfg.DefaultUnitPrice)
	assert.Equal(t, "USD", cfg.Currency)
}

func TestValidateRequiresMongoAndSecret(t *testing.T) {
	cfg := config.Config{Timezone: "UTC"}
	assert.ErrorContains(t, cfg.Validate(), "MONGO_URI")

	cfg.MongoURI = "mongodb://localhost:27017"
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "TIMEZONE")
}

func TestLoadPricingRulesMissingFileReturnsDefaults(t *testing.T) {
	rules, err := config.LoadPricingRules(filepath.Join(t.TempDir(), "nope.yaml"), "GEL")
	require.NoError(t, err)
	assert.Equal(t, services.DefaultPricingRules(), rules)

	rules, err = config.LoadPricingRules("", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", rules.Currency)
}

func TestLoadPricingRulesFromYAML(t *testing.T) {
	path := writeRules(t, `
promoCodes:
  spring20:
    type: percent
    value: 20
    minSubtotal: 2000
zones:
  - name: harbor
    keywords: [harbor, port]
`)

	rules, err := config.LoadPricingRules(path, "GEL")
	require.NoError(t, err)

	require.Contains(t, rules.PromoCodes, "SPRING20")
	assert.NotContains(t, rules.PromoCodes, "WELCOME10")
	assert.Equal(t, int64(400), rules.ApplyPromo("spring20", 2000).Discount)
	require.Len(t, rules.Zones, 1)
	assert.Equal(t, "harbor", rules.ResolveZone("12 Port road").Zone)
	assert.Equal(t, "GEL", rules.Currency)
}

func TestLoadPricingRulesRejectsCaseCollidingPromoCodes(t *testing.T) {
	path := writeRules(t, `
promoCodes:
  save10:
    type: percent
    value: 10
  SAVE10:
    type: flat
    value: 900
`)

	_, err := config.LoadPricingRules(path, "GEL")
	assert.ErrorContains(t, err, `promo code "SAVE10" is listed more than once`)
}

func TestLoadPricingRulesRejectsInvalidFile(t *testing.T) {
	_, err := config.LoadPricingRules(writeRules(t, `{{{not yaml`), "GEL")
	assert.ErrorContains(t, err, "parsing")

	_, err = config.LoadPricingRules(writeRules(t, `
promoCodes:
  BAD:
    type: bogus
    value: 1
`), "GEL")
	assert.ErrorContains(t, err, "invalid")
}
