package repostatus

import (
	"bufio"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FindGitDir walks up from start and returns the git directory (e.g.
// /repo/.git or a linked worktree gitdir) along with the working tree root.
// It does not invoke the git binary.
func FindGitDir(fs afero.Fs, start string) (gitDir, root string, ok bool, err error) {
	dir := filepath.Clean(strings.TrimSpace(start))
	if dir == "" || dir == "." {
		return "", "", false, errors.New("empty start dir")
	}

	for {
		candidate := filepath.Join(dir, ".git")
		st, statErr := fs.Stat(candidate)
		switch {
		case statErr == nil && st.IsDir():
			return candidate, dir, true, nil
		case statErr == nil && !st.IsDir():
			// Worktrees/submodules can use a .git file pointing at the real gitdir.
			target, err := readGitdirFile(fs, candidate)
			if err != nil {
				return "", "", false, err
			}
			if target != "" {
				return target, dir, true, nil
			}
		default:
			// keep walking up
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false, nil
		}
		dir = parent
	}
}

func readGitdirFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		// Expected: "gitdir: /path/to/dir"
		if strings.HasPrefix(strings.ToLower(ln), "gitdir:") {
			p := strings.TrimSpace(ln[len("gitdir:"):])
			if p == "" {
				return "", nil
			}
			// Resolve relative paths relative to the .git file dir.
			if !filepath.IsAbs(p) {
				p = filepath.Join(filepath.Dir(path), p)
			}
			return filepath.Clean(p), nil
		}
		// Unexpected content; stop.
		break
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// readHead parses gitDir/HEAD. Symbolic refs to refs/heads/ name a branch,
// anything else is a detached HEAD identified by its commit hash.
func readHead(fs afero.Fs, gitDir string) (branch, head string, err error) {
	raw, err := afero.ReadFile(fs, filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", "", err
	}
	content := strings.TrimSpace(string(raw))

	if ref, ok := strings.CutPrefix(content, "ref:"); ok {
		ref = strings.TrimSpace(ref)
		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			return name, "", nil
		}
		// Symbolic refs outside refs/heads aren't branches.
		return "", "", nil
	}

	return "", content, nil
}
