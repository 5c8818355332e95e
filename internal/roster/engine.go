package roster

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ytget/rollcall/internal/model"
)

var (
	// ErrEmptyName is returned when adding an empty name
	ErrEmptyName = errors.New("name is empty")
	// ErrDuplicateName is returned when adding a name already on the roster
	ErrDuplicateName = errors.New("name already exists")
)

// RandomSource picks an index in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// Settings is the sampling policy applied by Draw and Commit
type Settings struct {
	AvoidRepetition bool
}

// Engine owns the name list and the set of names already called
type Engine struct {
	names    []string
	used     map[string]struct{}
	settings Settings
	rng      RandomSource
}

// NewEngine creates an empty roster. A nil rng uses a time-seeded source.
func NewEngine(settings Settings, rng RandomSource) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		names:    []string{},
		used:     make(map[string]struct{}),
		settings: settings,
		rng:      rng,
	}
}

// Settings returns the current sampling policy
func (e *Engine) Settings() Settings {
	return e.settings
}

// UpdateSettings replaces the sampling policy
func (e *Engine) UpdateSettings(settings Settings) {
	e.settings = settings
}

// ValidateName reports why name cannot be added, or nil
func (e *Engine) ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if e.contains(name) {
		return ErrDuplicateName
	}
	return nil
}

// AddName appends name. It returns false for an empty or duplicate name.
func (e *Engine) AddName(name string) bool {
	if e.ValidateName(name) != nil {
		return false
	}
	e.names = append(e.names, name)
	return true
}

// RemoveName removes name from the roster and from the called set
func (e *Engine) RemoveName(name string) bool {
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i], e.names[i+1:]...)
			delete(e.used, name)
			return true
		}
	}
	return false
}

// Clear empties the roster
func (e *Engine) Clear() {
	e.names = []string{}
	e.used = make(map[string]struct{})
}

// ResetUsed forgets which names have been called
func (e *Engine) ResetUsed() {
	e.used = make(map[string]struct{})
}

// AvailableNames returns names not yet called, in roster order
func (e *Engine) AvailableNames() []string {
	available := make([]string, 0, len(e.names)-len(e.used))
	for _, name := range e.names {
		if _, ok := e.used[name]; !ok {
			available = append(available, name)
		}
	}
	return available
}

// DrawRandom picks a name uniformly from the available names, or from all
// names when avoidRepetition is false. It never resets the called set.
func (e *Engine) DrawRandom(avoidRepetition bool) (string, bool) {
	candidates := e.names
	if avoidRepetition {
		candidates = e.AvailableNames()
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[e.rng.Intn(len(candidates))], true
}

// MarkUsed records name as called. It does nothing unless avoidRepetition is
// set, and ignores names that are not on the roster.
func (e *Engine) MarkUsed(name string, avoidRepetition bool) {
	if !avoidRepetition || name == "" || !e.contains(name) {
		return
	}
	e.used[name] = struct{}{}
}

// CheckAndResetIfComplete resets the called set once every name has been
// called and reports whether it did.
func (e *Engine) CheckAndResetIfComplete(avoidRepetition bool) bool {
	if !avoidRepetition || len(e.names) == 0 || len(e.used) < len(e.names) {
		return false
	}
	e.ResetUsed()
	return true
}

// Draw picks a name using the stored policy
func (e *Engine) Draw() (string, bool) {
	return e.DrawRandom(e.settings.AvoidRepetition)
}

// Commit marks the displayed name as called and reloads the roster when it
// is exhausted. It reports whether the roster was reloaded.
func (e *Engine) Commit(name string) bool {
	e.MarkUsed(name, e.settings.AvoidRepetition)
	return e.CheckAndResetIfComplete(e.settings.AvoidRepetition)
}

// Names returns a copy of the roster
func (e *Engine) Names() []string {
	return append([]string(nil), e.names...)
}

// UsedNames returns the called names in roster order
func (e *Engine) UsedNames() []string {
	used := make([]string, 0, len(e.used))
	for _, name := range e.names {
		if _, ok := e.used[name]; ok {
			used = append(used, name)
		}
	}
	return used
}

// Len returns the number of names on the roster
func (e *Engine) Len() int {
	return len(e.names)
}

// Document returns the persisted form of the roster
func (e *Engine) Document() *model.RosterDocument {
	return &model.RosterDocument{Names: e.Names(), UsedNames: e.UsedNames()}
}

// Replace swaps in the contents of doc after normalizing it
func (e *Engine) Replace(doc *model.RosterDocument) {
	doc.Normalize()
	e.names = append([]string{}, doc.Names...)
	e.used = make(map[string]struct{}, len(doc.UsedNames))
	for _, name := range doc.UsedNames {
		e.used[name] = struct{}{}
	}
}

// LoadFromFile replaces the roster with the contents of path. An absent or
// malformed file leaves the roster unchanged and returns false.
func (e *Engine) LoadFromFile(path string) bool {
	doc, err := ReadDocument(context.Background(), path)
	if err != nil {
		if !errors.Is(err, ErrNoDocument) {
			log.Warn().Err(err).Str("path", path).Msg("failed to load name list")
		}
		return false
	}
	e.Replace(doc)
	log.Debug().Str("path", path).Int("names", len(e.names)).Int("used", len(e.used)).Msg("name list loaded")
	return true
}

// SaveToFile writes the roster to path, creating parent directories
func (e *Engine) SaveToFile(path string) bool {
	if err := WriteDocument(path, e.Document()); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to save name list")
		return false
	}
	return true
}

func (e *Engine) contains(name string) bool {
	for _, n := range e.names {
		if n == name {
			return true
		}
	}
	return false
}
