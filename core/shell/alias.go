package shell

import (
	"sort"
)

// DefaultAliases are available in every shell.
var DefaultAliases = map[string]string{
	"ll": "ls -la",
	"..": "cd ..",
	"h":  "cd ~",
}

// AliasTable maps command names to replacement text. It's fixed once built.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable creates a table of DefaultAliases overlaid with extra.
func NewAliasTable(extra map[string]string) AliasTable {
	aliases := make(map[string]string, len(DefaultAliases)+len(extra))
	for name, expansion := range DefaultAliases {
		aliases[name] = expansion
	}
	for name, expansion := range extra {
		aliases[name] = expansion
	}
	return AliasTable{aliases: aliases}
}

// Lookup returns the expansion of name. Unknown names aren't aliases.
func (a AliasTable) Lookup(name string) (string, bool) {
	expansion, ok := a.aliases[name]
	return expansion, ok
}

// Names returns the alias names in sorted order.
func (a AliasTable) Names() []string {
	names := make([]string, 0, len(a.aliases))
	for name := range a.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
