package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credkeeper/internal/flagx"
	"github.com/dmitrijs2005/credkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "5s" strings or integer nanoseconds. Absent keys leave the current value.
type JsonConfig struct {
	HTTPAddr         *string         `json:"http_addr"`
	GRPCAddr         *string         `json:"grpc_addr"`
	DatabaseDSN      *string         `json:"database_dsn"`
	DBHost           *string         `json:"db_host"`
	DBPort           *string         `json:"db_port"`
	DBUser           *string         `json:"db_user"`
	DBPassword       *string         `json:"db_password"`
	DBName           *string         `json:"db_name"`
	DBSSLMode        *string         `json:"db_sslmode"`
	MaxOpenConns     *int            `json:"db_max_open_conns"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	ResetTokenSecret *string         `json:"reset_token_secret"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	HealthInterval   *timex.Duration `json:"health_interval"`
	MetricsEnabled   *bool           `json:"metrics_enabled"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DBHost, c.DBHost)
	setString(&config.DBPort, c.DBPort)
	setString(&config.DBUser, c.DBUser)
	setString(&config.DBPassword, c.DBPassword)
	setString(&config.DBName, c.DBName)
	setString(&config.DBSSLMode, c.DBSSLMode)
	setString(&config.ResetTokenSecret, c.ResetTokenSecret)
	setString(&config.LogLevel, c.LogLevel)

	if c.MaxOpenConns != nil {
		config.MaxOpenConns = *c.MaxOpenConns
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HealthInterval != nil {
		config.HealthInterval = c.HealthInterval.Duration
	}
	if c.MetricsEnabled != nil {
		config.MetricsEnabled = *c.MetricsEnabled
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
