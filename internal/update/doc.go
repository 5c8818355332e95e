package update

// Package update implements self-update: checking a two-line version
// descriptor, staging the downloaded archive, handing off to the external
// updater, and the updater's replace-and-relaunch step.
