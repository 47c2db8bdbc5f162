package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vocnet/skos-backend/internal/platform/envutil"
)

// Config carries the repository-level settings that are not secrets:
// connection details stay in the environment, identity and paging
// policy live in the config file.
type Config struct {
	Mode string `yaml:"mode"`
	Port string `yaml:"port"`

	Repository Repository `yaml:"repository"`
	Paging     Paging     `yaml:"paging"`
}

// Repository is the harvesting identity advertised to clients.
type Repository struct {
	Name        string   `yaml:"name"`
	BaseURL     string   `yaml:"base_url"`
	Description string   `yaml:"description"`
	AdminEmails []string `yaml:"admin_emails"`
}

// Paging bounds listing responses.
type Paging struct {
	// PageSize is the number of records per harvesting page.
	PageSize int `yaml:"page_size"`
	// MaxRows caps relation query responses.
	MaxRows int `yaml:"max_rows"`
}

// Load reads the YAML file at path and applies defaults. A missing
// file is not an error: the defaults plus environment are enough for
// local development.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// FromEnv loads the file named by CONFIG_PATH, defaulting to
// config.yaml in the working directory.
func FromEnv() (*Config, error) {
	return Load(envutil.String("CONFIG_PATH", "config.yaml"))
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = envutil.String("APP_MODE", "development")
	}
	if c.Port == "" {
		c.Port = envutil.String("PORT", "8080")
	}
	if c.Repository.Name == "" {
		c.Repository.Name = "skos-backend"
	}
	if c.Repository.BaseURL == "" {
		c.Repository.BaseURL = "http://localhost:" + c.Port + "/oai-pmh"
	}
	if len(c.Repository.AdminEmails) == 0 {
		c.Repository.AdminEmails = []string{"admin@localhost"}
	}
	if c.Paging.PageSize <= 0 {
		c.Paging.PageSize = 100
	}
	if c.Paging.MaxRows <= 0 {
		c.Paging.MaxRows = 500
	}
}
