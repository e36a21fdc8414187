package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfeed/shipfeed/pkg/config"
)

type defaultsConfig struct {
	Name    string        `env:"CFG_TEST_NAME" envDefault:"shipfeed"`
	Port    int           `env:"CFG_TEST_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"30s"`
}

type envConfig struct {
	Name string `env:"CFG_TEST_ENV_NAME" envDefault:"default"`
	Pro  bool   `env:"CFG_TEST_ENV_PRO"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad_Defaults(t *testing.T) {
	config.Reset()
	os.Unsetenv("CFG_TEST_NAME")
	os.Unsetenv("CFG_TEST_PORT")
	os.Unsetenv("CFG_TEST_TIMEOUT")

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "shipfeed", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_FromEnvironmentAndCached(t *testing.T) {
	config.Reset()
	t.Setenv("CFG_TEST_ENV_NAME", "custom")
	t.Setenv("CFG_TEST_ENV_PRO", "true")

	var first envConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "custom", first.Name)
	assert.True(t, first.Pro)

	t.Setenv("CFG_TEST_ENV_NAME", "changed")

	var second envConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "custom", second.Name, "second load should be served from cache")

	config.Reset()

	var third envConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "changed", third.Name)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.Reset()
	os.Unsetenv("CFG_TEST_REQUIRED_SECRET")

	var cfg requiredConfig
	err := config.Load(&cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *defaultsConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoad_Panics(t *testing.T) {
	config.Reset()
	os.Unsetenv("CFG_TEST_REQUIRED_SECRET")

	var cfg requiredConfig
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
