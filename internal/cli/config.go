package cli

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = "schemadraw.toml"

// Config is the optional TOML configuration file. Flags override file
// values; the file overrides built-in defaults.
type Config struct {
	Store StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the diagram store backend.
type StoreConfig struct {
	Backend string      `toml:"backend"` // memory, file, redis, mongo
	Path    string      `toml:"path"`    // file backend
	Key     string      `toml:"key"`     // redis/mongo storage key
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// defaultConfig returns the built-in defaults: a file store next to the
// working directory.
func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: "file",
			Path:    "diagram.json",
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017"},
		},
	}
}

// loadConfig reads the TOML config at path. An empty path falls back to
// DefaultConfigFile when it exists, and to built-in defaults when it does
// not. An explicitly named file that is missing or malformed is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}
	return cfg, nil
}

// openStore constructs the configured diagram store.
func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "file":
		path := cfg.Store.Path
		if path == "" {
			path = "diagram.json"
		}
		return store.NewFileStore(path), nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Key:      cfg.Store.Key,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
			Key:        cfg.Store.Key,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown store backend: %q (must be one of: memory, file, redis, mongo)", cfg.Store.Backend)
	}
}
