package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "store", cfg.Store.ItemSource)
	assert.Equal(t, 4, cfg.Writes.Workers)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("ITEM_SOURCE", "remote")
	t.Setenv("WRITE_WORKERS", "8")
	t.Setenv("WRITE_QUEUE_SIZE", "not-a-number")
	t.Setenv("TICKET_API_TIMEOUT", "750ms")
	t.Setenv("TICKET_API_CACHE_TTL", "30")
	t.Setenv("TICKET_API_TOKEN", "secret")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")

	cfg := LoadEnv()

	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, "remote", cfg.Store.ItemSource)
	assert.Equal(t, 8, cfg.Writes.Workers)
	assert.Equal(t, 256, cfg.Writes.QueueSize)
	assert.Equal(t, 750*time.Millisecond, cfg.Remote.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Remote.CacheTTL)
	assert.Equal(t, "secret", cfg.Remote.Token)
	assert.True(t, cfg.Logger.DisableCaller)
}
