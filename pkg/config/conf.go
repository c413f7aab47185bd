package config

import (
	"embed"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	DefaultPort      = 8080
	DefaultModelFile = "heart_disease_model.yaml"
	DefaultLogLevel  = "info"

	EnvModel    = "CARDIOCHECK_MODEL"
	EnvPort     = "CARDIOCHECK_PORT"
	EnvLogLevel = "CARDIOCHECK_LOG_LEVEL"
	EnvDB       = "CARDIOCHECK_DB"
)

var (
	//go:embed sample/heart_disease_model.yaml
	sampleFS embed.FS
)

// Config represents app config object.
type Config struct {
	// Model is a local path or http(s) URL of the model artifact.
	Model    string `yaml:"model"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	// DB enables the verdict tally when set.
	DB string `yaml:"db,omitempty"`
}

func getDefaultConfig(dirPath string) *Config {
	return &Config{
		Model:    filepath.Join(dirPath, DefaultModelFile),
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
	}
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one with defaults.
// Environment variables override file values.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(dirPath, dirMode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig(dirPath)); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
		if err := writeSampleModel(dirPath); err != nil {
			return nil, err
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := getDefaultConfig(dirPath)
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}

	if err := applyEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

// writeSampleModel puts the bundled model at the default model path so a
// fresh install can serve predictions. An existing file is left alone.
func writeSampleModel(dirPath string) error {
	target := filepath.Join(dirPath, DefaultModelFile)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	b, err := sampleFS.ReadFile("sample/" + DefaultModelFile)
	if err != nil {
		return errors.Wrap(err, "failed to read sample model")
	}
	if err := os.WriteFile(target, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write sample model: %s", target)
	}
	return nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return errors.Errorf("invalid %s: %q", EnvPort, v)
		}
		c.Port = p
	}
	return nil
}

// GetOrCreateHomeDir returns the app directory under the current user's home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
