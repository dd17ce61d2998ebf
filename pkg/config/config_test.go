package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorePostgres, cfg.Inventory.Store)
	assert.True(t, cfg.Inventory.LowStockMultiplier.Equal(decimal.NewFromInt(2)))
	assert.False(t, cfg.Inventory.EnforceDirectory)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("INVENTORY_STORE", "MEMORY")
	v.Set("INVENTORY_LOW_STOCK_MULTIPLIER", "1.5")
	v.Set("INVENTORY_ENFORCE_DIRECTORY", "true")
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("ALERTS_CACHE_TTL_SECONDS", "5")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Inventory.Store)
	assert.Equal(t, "1.5", cfg.Inventory.LowStockMultiplier.String())
	assert.True(t, cfg.Inventory.EnforceDirectory)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
}

func TestFromViper_RechazaValoresInvalidos(t *testing.T) {
	cases := map[string]string{
		"INVENTORY_LOW_STOCK_MULTIPLIER": "0.5",
		"INVENTORY_STORE":                "mongo",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			v.Set(key, val)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "kardex", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/kardex?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
