package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.RWMutex
	loaded = make(map[reflect.Type]any)

	dotenvOnce sync.Once
)

// Load fills v from environment variables using `env` struct tags.
// A .env file in the working directory is read once, before the first parse,
// without overriding variables that are already set.
// Each config type is parsed once per process; later calls get a copy of the cached value.
//
//	type DatabaseConfig struct {
//		URL string `env:"PG_CONN_URL,required"`
//	}
//
//	var cfg DatabaseConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// missing .env is fine
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	mu.RLock()
	cached, ok := loaded[key]
	mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[key] = parsed
	*v = parsed

	return nil
}

// MustLoad is Load that panics on failure. Intended for process startup.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load %T: %v", *v, err))
	}
}

// Reset drops every cached config. Tests use it to re-read the environment.
func Reset() {
	mu.Lock()
	loaded = make(map[reflect.Type]any)
	mu.Unlock()
}
