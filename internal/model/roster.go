package model

// RosterDocument is the persisted name list. UsedNames is a set; its order
// carries no meaning.
type RosterDocument struct {
	Names     []string `json:"names"`
	UsedNames []string `json:"used_names"`
}

// Normalize drops empty and duplicate names, keeping first occurrences in
// order, and drops used entries that are not in Names.
func (d *RosterDocument) Normalize() {
	seen := make(map[string]struct{}, len(d.Names))
	names := make([]string, 0, len(d.Names))
	for _, name := range d.Names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	usedSeen := make(map[string]struct{}, len(d.UsedNames))
	used := make([]string, 0, len(d.UsedNames))
	for _, name := range d.UsedNames {
		if _, ok := seen[name]; !ok {
			continue
		}
		if _, dup := usedSeen[name]; dup {
			continue
		}
		usedSeen[name] = struct{}{}
		used = append(used, name)
	}

	d.Names = names
	d.UsedNames = used
}
