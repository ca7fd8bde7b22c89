// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig builds a Config from defaults, an optional YAML file and
// environment overrides, then validates the result. If path is empty the
// default locations are searched; a missing default file is not an
// error, a missing explicit file is.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		candidates := []string{"vortex.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides layers VORTEX_* environment variables on top of
// whatever the file provided. Only settings that make sense to flip per
// environment are exposed this way.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VORTEX_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("VORTEX_WS_PORT"); ok {
		c.WSPort = val
	}
	if val, ok := os.LookupEnv("VORTEX_UDP_ADDR"); ok {
		c.UDPAddr = val
	}
	if val, ok := os.LookupEnv("VORTEX_HEADLESS"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.NoTUI = bVal
		}
	}
	if val, ok := os.LookupEnv("VORTEX_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.DeviceID = iVal
		}
	}
}
