package shell

import (
	"regexp"
	"strings"
)

var (
	envRegex = regexp.MustCompile(`\$(\$|\?|[\p{L}\p{N}_]+)`)
)

// Expander rewrites a tokenized line before dispatch.
type Expander struct {
	Aliases   AliasTable
	Tokenizer Tokenizer
	// Lookup resolves a variable name, including the specials $ and ?.
	Lookup func(name string) string
}

// Expand applies alias expansion to the first token, then variable expansion
// to every token. Alias expansions are never expanded again, so aliases can't
// loop.
func (e *Expander) Expand(cl CommandLine) CommandLine {
	tokens := cl.Tokens
	if len(tokens) > 0 {
		if expansion, ok := e.Aliases.Lookup(tokens[0]); ok {
			words, err := e.Tokenizer.Split(expansion)
			if err != nil {
				words = strings.Fields(expansion)
			}
			tokens = append(words, tokens[1:]...)
		}
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		expanded := e.ExpandWord(tok)
		if expanded == "" && tok != "" {
			// A word that was only unset variables disappears, like unquoted
			// expansion in sh.
			continue
		}
		out = append(out, expanded)
	}

	cl.Tokens = out
	return cl
}

// ExpandWord replaces $NAME references in word. Unset variables become the
// empty string and a $ not followed by a name is kept literally.
func (e *Expander) ExpandWord(word string) string {
	if !strings.Contains(word, "$") {
		return word
	}
	return envRegex.ReplaceAllStringFunc(word, func(ref string) string {
		if e.Lookup == nil {
			return ""
		}
		return e.Lookup(ref[1:])
	})
}
