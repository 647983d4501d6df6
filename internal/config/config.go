package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Env var names recognized by the tool.
const (
	EnvConfigPath = "DKPROXY_CONFIG"
	EnvLogLevel   = "DKPROXY_LOG_LEVEL"
)

// DefaultConfigFile is looked up in the working directory when no --config
// flag or DKPROXY_CONFIG override is given.
const DefaultConfigFile = "dkproxyctl.yml"

// Config is the tool's own configuration. Every field has a working default;
// the config file only exists to override them.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Compose ComposeConfig `yaml:"compose"`
	Docker  DockerConfig  `yaml:"docker"`
	AWS     AWSConfig     `yaml:"aws"`
	Log     LogConfig     `yaml:"log"`
}

// PathsConfig locates the version state files. Relative paths resolve
// against the working directory, which for a proxy host is the deployment
// directory holding docker-compose.yml.
type PathsConfig struct {
	Manifest  string `yaml:"manifest"`
	EnvFile   string `yaml:"env_file"`
	BackupDir string `yaml:"backup_dir"`
	StateDir  string `yaml:"state_dir"`
}

// ComposeConfig controls how the compose lifecycle commands are invoked.
// Elevated wraps invocations in `sg docker -c` for operators whose docker
// group membership has not taken effect in the current login session.
type ComposeConfig struct {
	Command  []string `yaml:"command"`
	Project  string   `yaml:"project"`
	Dir      string   `yaml:"dir"`
	Elevated bool     `yaml:"elevated"`
}

// DockerConfig overrides how the engine client connects. An empty host uses
// the standard DOCKER_HOST environment resolution.
type DockerConfig struct {
	Host string `yaml:"host"`
}

// AWSConfig holds registry API settings. ECR Public only exists in us-east-1.
type AWSConfig struct {
	Region       string `yaml:"region"`
	PublicRegion string `yaml:"public_region"`
	Profile      string `yaml:"profile"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			Manifest:  "version-manifest.yaml",
			EnvFile:   "versions.env",
			BackupDir: ".version-backups",
			StateDir:  ".dkproxyctl",
		},
		Compose: ComposeConfig{
			Command: []string{"docker", "compose"},
		},
		AWS: AWSConfig{
			Region:       "us-east-1",
			PublicRegion: "us-east-1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, layered over Default(). An empty path
// falls back to DKPROXY_CONFIG, then to dkproxyctl.yml in the working
// directory. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
		log.Debug("No config file, using defaults", "path", path)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		log.Debug("Loaded config", "path", path)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// fillDefaults restores required values a config file may have blanked.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Paths.Manifest == "" {
		c.Paths.Manifest = def.Paths.Manifest
	}
	if c.Paths.EnvFile == "" {
		c.Paths.EnvFile = def.Paths.EnvFile
	}
	if c.Paths.BackupDir == "" {
		c.Paths.BackupDir = def.Paths.BackupDir
	}
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = def.Paths.StateDir
	}
	if len(c.Compose.Command) == 0 {
		c.Compose.Command = def.Compose.Command
	}
	if c.AWS.Region == "" {
		c.AWS.Region = def.AWS.Region
	}
	if c.AWS.PublicRegion == "" {
		c.AWS.PublicRegion = def.AWS.PublicRegion
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
