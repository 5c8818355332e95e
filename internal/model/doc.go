package model

// Package model defines data structures shared across the app: the on-disk
// roster document, update task records, and status enums. Structures carry
// JSON tags where they are persisted and expose explicit state helpers.
