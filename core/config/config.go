package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)

	// loadDotEnv reads .env once per process; a missing file is not an error.
	loadDotEnv = sync.OnceFunc(func() {
		_ = godotenv.Load()
	})
)

// Load parses environment variables into cfg. The first call for a given
// concrete type reads the environment; subsequent calls return the cached
// value so every caller observes the same configuration.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil target")
	}

	loadDotEnv()

	typ := reflect.TypeOf(*cfg)

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[typ]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	cache[typ] = *cfg
	return nil
}

// MustLoad is Load but panics on failure. Intended for application startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
