// Package repostatus reports the version control state of a directory for
// the shell prompt.
package repostatus

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ShortHashLen is the number of hash characters shown for a detached HEAD.
const ShortHashLen = 7

// Status describes the repository containing a directory.
type Status struct {
	IsRepo bool `json:"isRepo"`

	Root string `json:"root,omitempty"`

	// Branch is empty when HEAD doesn't point at a local branch.
	Branch string `json:"branch,omitempty"`
	// Head is the abbreviated commit for a detached HEAD.
	Head string `json:"head,omitempty"`

	// Dirty is set when the index or working tree has any change, untracked
	// files included if the Provider counts them.
	Dirty bool `json:"dirty"`
}

// Detached reports whether HEAD is a bare commit rather than a branch.
func (s Status) Detached() bool {
	return s.IsRepo && s.Branch == "" && s.Head != ""
}

// Provider discovers Status for directories.
type Provider struct {
	// Fs is used to locate and read repository metadata.
	Fs afero.Fs
	// Git is the git executable used for the dirty check.
	Git string
	// IncludeUntracked counts untracked files as dirty.
	IncludeUntracked bool
	// Timeout bounds the dirty check, zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewProvider creates a Provider for the host file system.
func NewProvider() *Provider {
	return &Provider{
		Fs:               afero.NewOsFs(),
		Git:              "git",
		IncludeUntracked: true,
		Timeout:          2 * time.Second,
	}
}

// Discover finds the repository containing dir. Directories outside any
// repository return a zero Status and no error. Errors are partial: the
// Status still describes whatever could be determined.
func (p *Provider) Discover(ctx context.Context, dir string) (Status, error) {
	gitDir, root, ok, err := FindGitDir(p.Fs, dir)
	if err != nil || !ok {
		return Status{}, err
	}

	st := Status{IsRepo: true, Root: root}

	branch, head, err := readHead(p.Fs, gitDir)
	if err != nil {
		return st, fmt.Errorf("reading HEAD: %w", err)
	}
	st.Branch = branch
	if len(head) > ShortHashLen {
		head = head[:ShortHashLen]
	}
	st.Head = head

	if st.Branch == "" && st.Head == "" {
		return st, nil
	}

	dirty, err := p.dirty(ctx, dir)
	if err != nil {
		return st, err
	}
	st.Dirty = dirty
	return st, nil
}

// Get is Discover without the error.
func (p *Provider) Get(ctx context.Context, dir string) Status {
	st, _ := p.Discover(ctx, dir)
	return st
}

func (p *Provider) dirty(ctx context.Context, dir string) (bool, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	args := []string{"--no-optional-locks", "status", "--porcelain=v1"}
	if !p.IncludeUntracked {
		args = append(args, "--untracked-files=no")
	}

	out, err := p.git(ctx, dir, args...)
	if err != nil {
		return false, err
	}
	return parsePorcelain(out), nil
}

func (p *Provider) git(ctx context.Context, dir string, args ...string) (string, error) {
	bin := p.Git
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// parsePorcelain reports whether git listed any pending change.
func parsePorcelain(out string) bool {
	for _, ln := range strings.Split(out, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if len(ln) < 2 {
			continue
		}
		if strings.TrimSpace(ln[:2]) != "" {
			return true
		}
	}
	return false
}
