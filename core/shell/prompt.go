package shell

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/josephlewis42/octane/core/repostatus"
)

// ColorMode controls prompt coloring.
type ColorMode string

const (
	ColorAlways ColorMode = "always"
	ColorAuto   ColorMode = "auto"
	ColorNever  ColorMode = "never"
)

// StatusProvider reports the repository state of a directory.
type StatusProvider interface {
	Discover(ctx context.Context, dir string) (repostatus.Status, error)
}

// PromptOptions configures prompt rendering.
type PromptOptions struct {
	Name           string
	Color          ColorMode
	AbbreviateHome bool
	// Status is consulted on every render when set.
	Status StatusProvider
}

func (s *Shell) nameColor() *color.Color {
	c := color.New(color.FgBlue, color.Bold)
	switch s.promptOpts.Color {
	case ColorAlways:
		c.EnableColor()
	case ColorNever:
		c.DisableColor()
	default:
		if s.interactive {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return c
}

// Prompt renders "name:cwd (branch*) $ ". Repository status is recomputed on
// every call.
func (s *Shell) Prompt(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString(s.nameColor().Sprint(s.promptOpts.Name + ":"))

	wd, err := s.OS.Getwd()
	if err != nil {
		s.logger.Debug("prompt getwd failed", zap.Error(err))
		wd = "?"
	}
	sb.WriteString(s.displayDir(wd))

	if s.promptOpts.Status != nil && err == nil {
		st, statusErr := s.promptOpts.Status.Discover(ctx, wd)
		if statusErr != nil {
			s.logger.Debug("repository status incomplete", zap.String("dir", wd), zap.Error(statusErr))
		}
		sb.WriteString(repoLabel(st))
	}

	sb.WriteString(" $ ")
	return sb.String()
}

func (s *Shell) displayDir(wd string) string {
	if !s.promptOpts.AbbreviateHome {
		return wd
	}
	home := s.home()
	switch {
	case home == "" || home == string(filepath.Separator):
		return wd
	case wd == home:
		return "~"
	case strings.HasPrefix(wd, home+string(filepath.Separator)):
		return "~" + strings.TrimPrefix(wd, home)
	default:
		return wd
	}
}

func repoLabel(st repostatus.Status) string {
	var label string
	switch {
	case st.Branch != "":
		label = st.Branch
	case st.Detached():
		label = "detached@" + st.Head
	default:
		return ""
	}
	if st.Dirty {
		label += "*"
	}
	return " (" + label + ")"
}
