package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// cliConfig is resolved from flags > environment > config file.
type cliConfig struct {
	Server        string `yaml:"server"`
	CredentialDir string `yaml:"credentialDir"`
}

// loadConfig merges the config sources. A .env file in the working directory
// is honored the same way the server side honors its own; absence is fine.
func loadConfig(flagServer, flagDir string) (cliConfig, error) {
	_ = godotenv.Load()

	cfg := cliConfig{}

	path := configFilePath()
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cliConfig{}, err
		}
	}

	if env := strings.TrimSpace(os.Getenv("ATTENDMARK_SERVER")); env != "" {
		cfg.Server = env
	}
	if env := strings.TrimSpace(os.Getenv("ATTENDMARK_CREDENTIAL_DIR")); env != "" {
		cfg.CredentialDir = env
	}

	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagDir != "" {
		cfg.CredentialDir = flagDir
	}

	return cfg, nil
}

func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".attendmark", "config.yaml")
}
