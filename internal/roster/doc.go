package roster

// Package roster implements the name-caller engine: an ordered list of unique
// names, the set of names already called, random selection that avoids
// repeats until everyone has been called, and JSON persistence of both.
//
// The engine is single-owner and holds no locks. A Watcher reports changes to
// the name list file over a channel so the owner can reload on its own
// goroutine.
