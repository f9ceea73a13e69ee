package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// clientConfig is the optional YAML file of the client.
type clientConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	CA    string `yaml:"ca"`
}

// loadConfig reads path if it exists. A missing file yields a zero config.
func loadConfig(path string) (clientConfig, error) {
	var cfg clientConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolve fills unset flag values from the environment, then the file.
func resolve(flagVal, envKey, fileVal string, getenv func(string) string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := getenv(envKey); v != "" {
		return v
	}
	return fileVal
}
