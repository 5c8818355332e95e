package download

// Package download implements the update archive pipeline: tasks fetch a zip
// over HTTP with byte progress, hand it to an extractor, and report every
// status change to a callback. Cancelled and failed tasks clean up their
// partial files.
