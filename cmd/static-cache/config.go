package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Root      string       `yaml:"root"`
	Provider  string       `yaml:"provider"`
	DB        string       `yaml:"db"`
	Resources []string     `yaml:"resources"`
	Mirror    MirrorConfig `yaml:"mirror"`
	// Refresh interval in Go duration syntax, e.g. "15m".
	Refresh string `yaml:"refresh"`
}

type MirrorConfig struct {
	Origin string `yaml:"origin"`
	Port   int    `yaml:"port"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
