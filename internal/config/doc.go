package config

// Package config holds user settings persisted as JSON next to the roster,
// plus the YAML application config with ROLLCALL_* environment overrides.
