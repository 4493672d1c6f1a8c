// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"os"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the content of the optional configuration file. Command
// line flags take precedence over it.
type fileConfig struct {
	URL       string `yaml:"url,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	ModelUUID string `yaml:"model-uuid,omitempty"`
	Macaroon  string `yaml:"macaroon,omitempty"`
}

// readConfig reads the configuration file at path. A missing file yields
// an empty configuration.
func readConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, errors.Annotate(err, "cannot read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Annotatef(err, "cannot parse config %q", path)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return cfg, errors.NotValidf("timeout %q in %q", cfg.Timeout, path)
		}
	}
	return cfg, nil
}

// writeConfig replaces the configuration file at path.
func writeConfig(path string, cfg fileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Annotate(err, "cannot write config")
	}
	return nil
}

// timeout returns the configured timeout, or zero when none is set.
func (cfg fileConfig) timeout() time.Duration {
	d, _ := time.ParseDuration(cfg.Timeout)
	return d
}
