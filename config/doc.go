// Package config loads service configuration from YAML files, .env files
// and environment variables using Viper.
//
// # Usage
//
//	cfg, err := config.Load[config.ServiceConfig]("orders", config.WithEnvPrefix("APP_"))
//
// Files are searched in the usual locations (./cmd/<service>/config.yml,
// ./config/config.yml, ./config.yml). Environment variables override file
// values; with a prefix, APP_LIFECYCLE_SUBCOMPONENT_STRATEGY sets
// lifecycle.subcomponent_strategy.
package config
