package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "REPO_ORBIT_"

// Config represents the application configuration
type Config struct {
	Repo string `koanf:"repo"`

	GitHub struct {
		APIURL string `koanf:"api_url"`
		Token  string `koanf:"token"`
	} `koanf:"github"`

	Greptile struct {
		APIURL  string        `koanf:"api_url"`
		APIKey  string        `koanf:"api_key"`
		Branch  string        `koanf:"branch"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"greptile"`

	Fetch struct {
		Concurrency int           `koanf:"concurrency"`
		Timeout     time.Duration `koanf:"timeout"`
	} `koanf:"fetch"`

	Server struct {
		Addr string `koanf:"addr"`
	} `koanf:"server"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"github.api_url":    "https://api.github.com",
		"greptile.api_url":  "https://api.greptile.com",
		"greptile.branch":   "main",
		"greptile.timeout":  "2m",
		"fetch.concurrency": 4,
		"fetch.timeout":     "5m",
		"server.addr":       ":8080",
		"log.level":         "info",
	}
}

// DefaultPaths are tried in order when no config file is given
func DefaultPaths() []string {
	paths := []string{"./repo-orbit.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".repo-orbit.toml"))
	}
	return paths
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig layers defaults, the TOML file at configPath (or the first of
// DefaultPaths that exists) and REPO_ORBIT_* environment variables.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range DefaultPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", path, err)
				}
				break
			}
		}
	}

	// REPO_ORBIT_GITHUB_TOKEN -> github.token, REPO_ORBIT_FETCH_CONCURRENCY -> fetch.concurrency
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.GitHub.Token == "" {
		config.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if config.Greptile.APIKey == "" {
		config.Greptile.APIKey = os.Getenv("GREPTILE_API_KEY")
	}

	return &config, nil
}

var sections = []string{"github", "greptile", "fetch", "server", "log"}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate checks the settings every command needs
func Validate(config *Config) error {
	if config.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", config.Fetch.Concurrency)
	}
	if config.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if config.Greptile.Timeout <= 0 {
		return fmt.Errorf("greptile.timeout must be positive")
	}
	if config.GitHub.APIURL == "" {
		return fmt.Errorf("github.api_url is required")
	}
	return nil
}

// InitConfig writes a sample configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# repo-orbit configuration

repo = "Formbee/Formbee"

[github]
api_url = "https://api.github.com"
token = "your-github-token"

[greptile]
api_url = "https://api.greptile.com"
api_key = "your-greptile-api-key"
branch = "main"
timeout = "2m"

[fetch]
concurrency = 4
timeout = "5m"

[server]
addr = ":8080"

[log]
level = "info"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0o600)
}
