package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/binarybrigade/printbot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, coredatabase.DriverSQLite, coredatabase.DriverName(cfg.Database))
	assert.Equal(t, "printbot.db", cfg.Database.Path)
	assert.True(t, cfg.Pricing.UnitRate.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 10, cfg.Orders.SweepMaxAgeDays)
	assert.Equal(t, 24, cfg.Orders.SweepIntervalHours)
	assert.Equal(t, "reports", cfg.Reports.Dir)
	require.NotNil(t, cfg.CoreConfig())
	assert.Equal(t, "123:abc", cfg.CoreConfig().Telegram.Token)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
database:
  driver: sqlite
  path: /tmp/shop.db
pricing:
  unit_rate: "9.5"
orders:
  sweep_max_age_days: 5
  sweep_interval_hours: 6
payment:
  shop_id: shop-1
  secret_key: sk
reports:
  dir: /tmp/reports
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shop.db", cfg.Database.Path)
	assert.True(t, cfg.Pricing.UnitRate.Equal(decimal.RequireFromString("9.5")))
	assert.Equal(t, 5, cfg.Orders.SweepMaxAgeDays)
	assert.Equal(t, 6, cfg.Orders.SweepIntervalHours)
	assert.Equal(t, "https://api.yookassa.ru/v3/payments", cfg.Payment.APIURL)
	assert.Equal(t, "RUB", cfg.Payment.Currency)
	assert.Equal(t, "/tmp/reports", cfg.Reports.Dir)
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing token", "telegram: {}\n"},
		{"bad driver", "telegram:\n  token: \"t\"\ndatabase:\n  driver: oracle\n"},
		{"negative rate", "telegram:\n  token: \"t\"\npricing:\n  unit_rate: \"-1\"\n"},
		{"payment without secret", "telegram:\n  token: \"t\"\npayment:\n  shop_id: s\n"},
		{"postgres without host", "telegram:\n  token: \"t\"\ndatabase:\n  driver: postgres\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}
