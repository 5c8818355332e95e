package update

import "errors"

var (
	// ErrNetwork covers unreachable servers, timeouts, bad status codes and
	// malformed descriptors
	ErrNetwork = errors.New("cannot reach update server")
	// ErrArchive is returned for unreadable or unsafe archives
	ErrArchive = errors.New("invalid update archive")
	// ErrFilesystem is returned when staged files cannot be installed
	ErrFilesystem = errors.New("update filesystem error")
	// ErrUpdaterMissing is returned when the updater executable is absent
	ErrUpdaterMissing = errors.New("updater executable not found")
)
