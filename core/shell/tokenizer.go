package shell

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/anmitsu/go-shlex"
)

// TokenizerMode selects how a line is split into words.
type TokenizerMode string

const (
	// ModeFields splits on runs of whitespace, quotes are ordinary
	// characters.
	ModeFields TokenizerMode = "fields"
	// ModeShlex splits POSIX style, honoring quotes and backslash escapes.
	ModeShlex TokenizerMode = "shlex"
)

// BackgroundMarker ends a line that should run without waiting.
const BackgroundMarker = "&"

// CommandLine is one parsed input line.
type CommandLine struct {
	Tokens     []string
	Background bool
	// Text is the trimmed line without the background marker.
	Text string
}

// Tokenizer splits input lines into a CommandLine.
type Tokenizer struct {
	Mode TokenizerMode
	// AttachedBackground also treats a & glued to the last word ("sleep 5&")
	// as the background marker.
	AttachedBackground bool
}

// Parse tokenizes line. The background marker is detected on the raw text so
// a variable that expands to & never backgrounds a command.
func (t Tokenizer) Parse(line string) (CommandLine, error) {
	text := strings.TrimRightFunc(line, unicode.IsSpace)

	var cl CommandLine
	if rest, ok := t.cutBackground(text); ok {
		cl.Background = true
		text = rest
	}
	cl.Text = strings.TrimSpace(text)

	tokens, err := t.Split(cl.Text)
	if err != nil {
		return CommandLine{}, err
	}
	cl.Tokens = tokens
	return cl, nil
}

// Split breaks text into words without looking for a background marker.
func (t Tokenizer) Split(text string) ([]string, error) {
	switch t.Mode {
	case ModeShlex:
		tokens, err := shlex.Split(text, true)
		if err != nil {
			return nil, fmt.Errorf("syntax error: %w: %v", ErrInvalidArgument, err)
		}
		return tokens, nil
	default:
		return strings.Fields(text), nil
	}
}

func (t Tokenizer) cutBackground(text string) (string, bool) {
	rest, ok := strings.CutSuffix(text, BackgroundMarker)
	if !ok {
		return text, false
	}

	standalone := rest == "" || strings.TrimRightFunc(rest, unicode.IsSpace) != rest
	if standalone {
		return rest, true
	}
	if t.AttachedBackground && !strings.HasSuffix(rest, BackgroundMarker) && !strings.HasSuffix(rest, `\`) {
		return rest, true
	}
	return text, false
}
