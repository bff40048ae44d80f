package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// settings are the resolved defaults shared by every subcommand. Explicit
// command flags still win over anything loaded here.
type settings struct {
	ConfigFile     string
	EnvFile        string
	ShellFile      string
	BackendTimeout time.Duration
}

// settingsFile is the on-disk shape written by config init.
type settingsFile struct {
	EnvFile   string `yaml:"env_file"`
	ShellFile string `yaml:"shell_file"`
	Backend   struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
}

var cfg = defaultSettings()

func defaultSettings() *settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return &settings{
		ConfigFile:     defaultConfigFilePath(home),
		EnvFile:        defaultEnvFilePath(home),
		ShellFile:      defaultShellRC(),
		BackendTimeout: 2 * time.Second,
	}
}

func newViper(defaults *settings) *viper.Viper {
	v := viper.New()
	v.SetDefault("env_file", defaults.EnvFile)
	v.SetDefault("shell_file", defaults.ShellFile)
	v.SetDefault("backend.timeout", defaults.BackendTimeout)
	v.SetEnvPrefix("TESTENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadSettings reads configPath (when it exists) on top of the defaults,
// then applies TESTENV_* environment overrides. An explicitly named config
// file that does not exist is an error; the default one is optional.
func loadSettings(configPath string, explicit bool) (*settings, error) {
	defaults := defaultSettings()
	if configPath == "" {
		configPath = defaults.ConfigFile
	}

	v := newViper(defaults)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Debug().Str("config_file", configPath).Msg("no config file, using defaults")
	}

	return &settings{
		ConfigFile:     configPath,
		EnvFile:        expandHome(v.GetString("env_file")),
		ShellFile:      expandHome(v.GetString("shell_file")),
		BackendTimeout: v.GetDuration("backend.timeout"),
	}, nil
}

func (s *settings) toFile() settingsFile {
	var f settingsFile
	f.EnvFile = s.EnvFile
	f.ShellFile = s.ShellFile
	f.Backend.Timeout = s.BackendTimeout.String()
	return f
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func defaultConfigFilePath(home string) string {
	return filepath.Join(home, ".testenv", "config", "config.yaml")
}
