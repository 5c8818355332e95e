package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/platform"
)

// Theme is the stored appearance preference
type Theme string

const (
	ThemeAuto  Theme = "AUTO"
	ThemeLight Theme = "LIGHT"
	ThemeDark  Theme = "DARK"
)

// Settings keys as they appear in the settings file
const (
	KeyAutoSave              = "auto_save"
	KeyAvoidRepetition       = "avoid_repetition"
	KeyCheckUpdateOnStartup  = "check_update_on_startup"
	KeyTheme                 = "theme"
	KeyVersion               = "version"
	KeyShowTimerNotification = "show_timer_notification"
)

// Default values
const (
	DefaultAutoSave              = true
	DefaultAvoidRepetition       = true
	DefaultCheckUpdateOnStartup  = false
	DefaultTheme                 = ThemeAuto
	DefaultShowTimerNotification = true
)

// Values is a snapshot of the user settings. It is what gets handed to the
// engines and written to disk.
type Values struct {
	AutoSave              bool   `json:"auto_save"`
	AvoidRepetition       bool   `json:"avoid_repetition"`
	CheckUpdateOnStartup  bool   `json:"check_update_on_startup"`
	Theme                 Theme  `json:"theme"`
	Version               string `json:"version"`
	ShowTimerNotification bool   `json:"show_timer_notification"`
}

// DefaultValues returns the factory settings
func DefaultValues() Values {
	return Values{
		AutoSave:              DefaultAutoSave,
		AvoidRepetition:       DefaultAvoidRepetition,
		CheckUpdateOnStartup:  DefaultCheckUpdateOnStartup,
		Theme:                 DefaultTheme,
		ShowTimerNotification: DefaultShowTimerNotification,
	}
}

// fileValues mirrors Values with optional fields so absent keys keep defaults
type fileValues struct {
	AutoSave              *bool   `json:"auto_save"`
	AvoidRepetition       *bool   `json:"avoid_repetition"`
	CheckUpdateOnStartup  *bool   `json:"check_update_on_startup"`
	Theme                 *string `json:"theme"`
	Version               *string `json:"version"`
	ShowTimerNotification *bool   `json:"show_timer_notification"`
}

// Settings manages application preferences backed by a JSON file
type Settings struct {
	path   string
	values Values
}

// NewSettings creates a settings manager with defaults for the given file
func NewSettings(path string) *Settings {
	return &Settings{path: path, values: DefaultValues()}
}

// Path returns the default settings file location
func (s *Settings) Path() string {
	return s.path
}

// Values returns a copy of the current settings
func (s *Settings) Values() Values {
	return s.values
}

// Load reads the default settings file. A missing or malformed file leaves
// the current values untouched and returns false.
func (s *Settings) Load() bool {
	return s.LoadFrom(s.path)
}

// LoadFrom reads settings from path, applying defaults for absent keys
func (s *Settings) LoadFrom(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to read settings")
		}
		return false
	}

	var raw fileValues
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("malformed settings file")
		return false
	}

	values := DefaultValues()
	if raw.AutoSave != nil {
		values.AutoSave = *raw.AutoSave
	}
	if raw.AvoidRepetition != nil {
		values.AvoidRepetition = *raw.AvoidRepetition
	}
	if raw.CheckUpdateOnStartup != nil {
		values.CheckUpdateOnStartup = *raw.CheckUpdateOnStartup
	}
	if raw.Theme != nil {
		values.Theme = ParseTheme(*raw.Theme)
	}
	if raw.Version != nil {
		values.Version = *raw.Version
	}
	if raw.ShowTimerNotification != nil {
		values.ShowTimerNotification = *raw.ShowTimerNotification
	}

	s.values = values
	return true
}

// Save writes the settings to the default file
func (s *Settings) Save() bool {
	return s.SaveTo(s.path)
}

// SaveTo writes pretty-printed settings to path, creating parent directories
func (s *Settings) SaveTo(path string) bool {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to encode settings")
		return false
	}
	if err := platform.WriteFileAtomic(path, append(data, '\n')); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to save settings")
		return false
	}
	return true
}

// Reset restores factory values. The stored version survives a reset so the
// post-update notice is not shown again.
func (s *Settings) Reset() {
	version := s.values.Version
	s.values = DefaultValues()
	s.values.Version = version
}

// GetAutoSave returns whether roster changes are persisted automatically
func (s *Settings) GetAutoSave() bool {
	return s.values.AutoSave
}

// SetAutoSave sets automatic persistence
func (s *Settings) SetAutoSave(v bool) {
	s.values.AutoSave = v
}

// GetAvoidRepetition returns whether drawn names are excluded until all are drawn
func (s *Settings) GetAvoidRepetition() bool {
	return s.values.AvoidRepetition
}

// SetAvoidRepetition sets the sampling policy
func (s *Settings) SetAvoidRepetition(v bool) {
	s.values.AvoidRepetition = v
}

// GetCheckUpdateOnStartup returns whether a silent update check runs on startup
func (s *Settings) GetCheckUpdateOnStartup() bool {
	return s.values.CheckUpdateOnStartup
}

// SetCheckUpdateOnStartup sets the startup update check
func (s *Settings) SetCheckUpdateOnStartup(v bool) {
	s.values.CheckUpdateOnStartup = v
}

// GetTheme returns the theme preference
func (s *Settings) GetTheme() Theme {
	return s.values.Theme
}

// SetTheme sets the theme preference, falling back to AUTO for unknown values
func (s *Settings) SetTheme(theme Theme) {
	s.values.Theme = ParseTheme(string(theme))
}

// GetVersion returns the application version recorded at the last run
func (s *Settings) GetVersion() string {
	return s.values.Version
}

// SetVersion records the application version
func (s *Settings) SetVersion(version string) {
	s.values.Version = version
}

// GetShowTimerNotification returns whether countdown expiry raises a desktop notification
func (s *Settings) GetShowTimerNotification() bool {
	return s.values.ShowTimerNotification
}

// SetShowTimerNotification sets desktop notifications for the countdown
func (s *Settings) SetShowTimerNotification(v bool) {
	s.values.ShowTimerNotification = v
}

// GetThemeOptions returns available theme options
func (s *Settings) GetThemeOptions() []Theme {
	return []Theme{ThemeAuto, ThemeLight, ThemeDark}
}

// Set assigns a setting by its file key from a string value
func (s *Settings) Set(key, value string) error {
	switch key {
	case KeyTheme:
		theme := Theme(strings.ToUpper(strings.TrimSpace(value)))
		if !isKnownTheme(theme) {
			return fmt.Errorf("invalid theme %q: expected AUTO, LIGHT or DARK", value)
		}
		s.values.Theme = theme
		return nil
	case KeyVersion:
		s.values.Version = strings.TrimSpace(value)
		return nil
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	switch key {
	case KeyAutoSave:
		s.values.AutoSave = b
	case KeyAvoidRepetition:
		s.values.AvoidRepetition = b
	case KeyCheckUpdateOnStartup:
		s.values.CheckUpdateOnStartup = b
	case KeyShowTimerNotification:
		s.values.ShowTimerNotification = b
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}

// CheckVersionChange compares the stored version with the running one and
// records the running version. It reports the previous version and whether
// the "updated" notice should be shown; a first run records silently.
func (s *Settings) CheckVersionChange(current string) (string, bool) {
	previous := s.values.Version
	if previous == current {
		return previous, false
	}
	s.values.Version = current
	return previous, previous != ""
}

// ParseTheme maps a stored theme name to a Theme, defaulting to AUTO
func ParseTheme(value string) Theme {
	theme := Theme(strings.ToUpper(strings.TrimSpace(value)))
	if isKnownTheme(theme) {
		return theme
	}
	return ThemeAuto
}

func isKnownTheme(theme Theme) bool {
	return theme == ThemeAuto || theme == ThemeLight || theme == ThemeDark
}
