package platform

// Package platform contains OS/platform integration glue: data directories,
// filesystem helpers used by persistence and the updater (atomic writes,
// tree copy, empty-dir cleanup), and process kill/launch per operating system.
