// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig holds the optional YAML config file. Every field has a flag
// equivalent; explicit flags always win over file values.
type fileConfig struct {
	Port       string   `yaml:"port"`
	Baud       int      `yaml:"baud"`
	Blacklist  string   `yaml:"blacklist"`
	Highlights []string `yaml:"highlights"`
}

// File-sourced defaults for the watch/survey commands.
var (
	cfgBlacklistPath string
	cfgHighlights    []string
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "canmon", "config.yaml")
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyConfigFile fills in flag defaults from the config file. An explicitly
// requested file must exist; the default location is optional.
func applyConfigFile() error {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return err
	}

	flags := rootCmd.PersistentFlags()
	if cfg.Port != "" && !flags.Changed("port") {
		portName = cfg.Port
	}
	if cfg.Baud != 0 && !flags.Changed("baud") {
		baudRate = cfg.Baud
	}
	cfgBlacklistPath = cfg.Blacklist
	cfgHighlights = cfg.Highlights

	return nil
}
