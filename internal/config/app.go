package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ytget/rollcall/internal/platform"
	"gopkg.in/yaml.v3"
)

// File names inside the data directory
const (
	AppConfigFile = "rollcall.yaml"
	NameListFile  = "name_list.json"
	SettingsFile  = "settings.json"
)

// Environment overrides
const (
	EnvDataDir       = "ROLLCALL_DATA_DIR"
	EnvLogLevel      = "ROLLCALL_LOG_LEVEL"
	EnvDescriptorURL = "ROLLCALL_UPDATE_URL"
	EnvCheckTimeout  = "ROLLCALL_UPDATE_TIMEOUT_SEC"
	EnvInstallDir    = "ROLLCALL_INSTALL_DIR"
)

// Update defaults
const (
	DefaultDescriptorURL     = "https://raw.githubusercontent.com/mc-xinyu/QuantumRollCallUpdate/main/version.txt"
	DefaultCheckTimeout      = 10 * time.Second
	DefaultStagingDirName    = "downloads"
	DefaultProcessName       = "rollcall"
	DefaultMainExecutable    = "rollcall"
	DefaultUpdaterExecutable = "rollcall-updater"
	DefaultLogLevel          = "info"
)

// AppConfig holds deployment configuration that is not a user preference
type AppConfig struct {
	DataDir  string       `yaml:"data_dir"`
	LogLevel string       `yaml:"log_level"`
	Update   UpdateConfig `yaml:"update"`
}

// UpdateConfig configures the self-update workflow
type UpdateConfig struct {
	DescriptorURL     string        `yaml:"descriptor_url"`
	CheckTimeout      time.Duration `yaml:"check_timeout"`
	InstallDir        string        `yaml:"install_dir"`
	StagingDir        string        `yaml:"staging_dir"`
	ProcessName       string        `yaml:"process_name"`
	MainExecutable    string        `yaml:"main_executable"`
	UpdaterExecutable string        `yaml:"updater_executable"`
}

// DefaultAppConfig returns configuration rooted at the user data directory
// and the directory of the running binary
func DefaultAppConfig() *AppConfig {
	dataDir, err := platform.GetAppDataDir()
	if err != nil {
		dataDir = "config"
	}
	installDir, err := platform.ExecutableDir()
	if err != nil {
		installDir = "."
	}
	return &AppConfig{
		DataDir:  dataDir,
		LogLevel: DefaultLogLevel,
		Update: UpdateConfig{
			DescriptorURL:     DefaultDescriptorURL,
			CheckTimeout:      DefaultCheckTimeout,
			InstallDir:        installDir,
			ProcessName:       DefaultProcessName,
			MainExecutable:    DefaultMainExecutable,
			UpdaterExecutable: DefaultUpdaterExecutable,
		},
	}
}

// DefaultAppConfigPath returns rollcall.yaml inside the data directory,
// honoring ROLLCALL_DATA_DIR
func DefaultAppConfigPath() string {
	return filepath.Join(getEnv(EnvDataDir, DefaultAppConfig().DataDir), AppConfigFile)
}

// LoadAppConfig reads a YAML config over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.ApplyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from ROLLCALL_* environment variables
func (c *AppConfig) ApplyEnv() {
	c.DataDir = getEnv(EnvDataDir, c.DataDir)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Update.DescriptorURL = getEnv(EnvDescriptorURL, c.Update.DescriptorURL)
	c.Update.InstallDir = getEnv(EnvInstallDir, c.Update.InstallDir)
	if sec := getEnvAsInt(EnvCheckTimeout, 0); sec > 0 {
		c.Update.CheckTimeout = time.Duration(sec) * time.Second
	}
}

func (c *AppConfig) fillDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Update.CheckTimeout <= 0 {
		c.Update.CheckTimeout = DefaultCheckTimeout
	}
	if c.Update.StagingDir == "" {
		c.Update.StagingDir = filepath.Join(c.Update.InstallDir, DefaultStagingDirName)
	}
	if c.Update.ProcessName == "" {
		c.Update.ProcessName = DefaultProcessName
	}
	if c.Update.MainExecutable == "" {
		c.Update.MainExecutable = DefaultMainExecutable
	}
	if c.Update.UpdaterExecutable == "" {
		c.Update.UpdaterExecutable = DefaultUpdaterExecutable
	}
}

// NameListPath returns the default name list file
func (c *AppConfig) NameListPath() string {
	return filepath.Join(c.DataDir, NameListFile)
}

// SettingsPath returns the default settings file
func (c *AppConfig) SettingsPath() string {
	return filepath.Join(c.DataDir, SettingsFile)
}

// MainExecutablePath returns the application binary inside the install dir
func (c *AppConfig) MainExecutablePath() string {
	return filepath.Join(c.Update.InstallDir, platform.ExecutableName(c.Update.MainExecutable))
}

// UpdaterExecutablePath returns the updater binary inside the install dir
func (c *AppConfig) UpdaterExecutablePath() string {
	return filepath.Join(c.Update.InstallDir, platform.ExecutableName(c.Update.UpdaterExecutable))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
