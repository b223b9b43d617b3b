// Package config loads the CLI settings: a YAML file, then DICTBASE_*
// environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Drivers lists the accepted driver names.
var Drivers = []string{"sqlite", "postgres", "mysql", "mssql", "duckdb"}

var ErrInvalid = errors.New("invalid config")

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Config struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	Table      string `yaml:"table"`
	Timestamps bool   `yaml:"timestamps"`
	Log        Log    `yaml:"log"`
}

func Default() Config {
	return Config{
		Driver:     "sqlite",
		Timestamps: true,
		Log: Log{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any DICTBASE_* variables that are set.
func ApplyEnv(cfg *Config) error {
	str := map[string]*string{
		"DICTBASE_DRIVER":    &cfg.Driver,
		"DICTBASE_DSN":       &cfg.DSN,
		"DICTBASE_TABLE":     &cfg.Table,
		"DICTBASE_LOG_LEVEL": &cfg.Log.Level,
	}
	for env, dst := range str {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DICTBASE_TIMESTAMPS": &cfg.Timestamps,
		"DICTBASE_LOG_PRETTY": &cfg.Log.Pretty,
	}
	for env, dst := range bools {
		v, ok := os.LookupEnv(env)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", env, v, ErrInvalid)
		}
		*dst = b
	}
	return nil
}

func (c Config) Validate() error {
	known := false
	for _, d := range Drivers {
		if c.Driver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unsupported driver %q: %w", c.Driver, ErrInvalid)
	}
	// duckdb opens an in-memory database without a DSN.
	if c.DSN == "" && c.Driver != "duckdb" {
		return fmt.Errorf("dsn is required for %s: %w", c.Driver, ErrInvalid)
	}
	return nil
}
