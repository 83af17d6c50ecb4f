// Package config loads runtime configuration for the credkeeper console
// client.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config.
//  3. Environment variables CREDKEEPER_SERVER_URL and CREDKEEPER_TIMEOUT.
//
// Command-line flags are bound by the cli package on top of the result.
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s"
//	}
package config
