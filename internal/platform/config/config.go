package config

import "github.com/kelseyhightower/envconfig"

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"quorum"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	// PostgresDSN selects the gorm postgres driver; when empty the process
	// falls back to an embedded sqlite database at SQLitePath.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"quorum.db"`

	// StartEpoch seeds the logical clock when the process boots. The host
	// environment owns the counter afterwards.
	StartEpoch uint64 `envconfig:"START_EPOCH" default:"0"`

	// NativeAssetID names the native currency in asset-gateway calls.
	NativeAssetID string `envconfig:"NATIVE_ASSET_ID" default:"stx"`

	OutboxBatchSize     int `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollIntervalS int `envconfig:"OUTBOX_POLL_INTERVAL_SECONDS" default:"5"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
