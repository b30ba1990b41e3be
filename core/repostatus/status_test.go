package repostatus

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memProvider(t *testing.T, files map[string]string) *Provider {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return &Provider{
		Fs:  fs,
		Git: filepath.Join(t.TempDir(), "no-such-git"),
	}
}

func TestFindGitDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/proj/.git", 0755))
	require.NoError(t, fs.MkdirAll("/src/proj/pkg/deep", 0755))
	require.NoError(t, fs.MkdirAll("/src/wt/sub", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/wt/.git", []byte("gitdir: ../proj/.git/worktrees/wt\n"), 0644))
	require.NoError(t, fs.MkdirAll("/elsewhere", 0755))

	cases := map[string]struct {
		start      string
		wantGitDir string
		wantRoot   string
		wantOK     bool
	}{
		"root":      {start: "/src/proj", wantGitDir: "/src/proj/.git", wantRoot: "/src/proj", wantOK: true},
		"nested":    {start: "/src/proj/pkg/deep", wantGitDir: "/src/proj/.git", wantRoot: "/src/proj", wantOK: true},
		"gitdir":    {start: "/src/wt/sub", wantGitDir: "/src/proj/.git/worktrees/wt", wantRoot: "/src/wt", wantOK: true},
		"unrelated": {start: "/elsewhere", wantOK: false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			gitDir, root, ok, err := FindGitDir(fs, tc.start)
			assert.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantGitDir, gitDir)
			assert.Equal(t, tc.wantRoot, root)
		})
	}
}

func TestFindGitDir_emptyStart(t *testing.T) {
	_, _, _, err := FindGitDir(afero.NewMemMapFs(), " ")
	assert.Error(t, err)
}

func TestProvider_Get_head(t *testing.T) {
	cases := map[string]struct {
		head         string
		wantBranch   string
		wantHead     string
		wantDetached bool
	}{
		"branch":        {head: "ref: refs/heads/main\n", wantBranch: "main"},
		"nested branch": {head: "ref: refs/heads/feature/login\n", wantBranch: "feature/login"},
		"detached": {
			head:         "9fceb02d0ae598e95dc970b74767f19372d61af8\n",
			wantHead:     "9fceb02",
			wantDetached: true,
		},
		"symbolic non-branch": {head: "ref: refs/remotes/origin/main\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			p := memProvider(t, map[string]string{
				"/repo/.git/HEAD": tc.head,
			})

			st := p.Get(context.Background(), "/repo")

			assert.True(t, st.IsRepo)
			assert.Equal(t, "/repo", st.Root)
			assert.Equal(t, tc.wantBranch, st.Branch)
			assert.Equal(t, tc.wantHead, st.Head)
			assert.Equal(t, tc.wantDetached, st.Detached())
			assert.False(t, st.Dirty, "dirty check can't run without git")
		})
	}
}

func TestProvider_Discover_gitMissing(t *testing.T) {
	p := memProvider(t, map[string]string{
		"/repo/.git/HEAD": "ref: refs/heads/main\n",
	})

	st, err := p.Discover(context.Background(), "/repo")

	assert.Error(t, err)
	assert.Equal(t, "main", st.Branch)
	assert.False(t, st.Dirty)
}

func TestProvider_Get_nonRepo(t *testing.T) {
	st := NewProvider().Get(context.Background(), t.TempDir())
	assert.Equal(t, Status{}, st)
}

func TestParsePorcelain(t *testing.T) {
	cases := map[string]struct {
		out  string
		want bool
	}{
		"clean":            {out: "", want: false},
		"untracked":        {out: "?? new.txt\n", want: true},
		"worktree edit":    {out: " M a.txt\n", want: true},
		"staged edit":      {out: "M  a.txt\n", want: true},
		"staged add":       {out: "A  b.txt\n", want: true},
		"deleted":          {out: " D a.txt\n", want: true},
		"renamed":          {out: "R  a.txt -> b.txt\n", want: true},
		"blank status":     {out: "   \n", want: false},
		"crlf":             {out: " M a.txt\r\n", want: true},
		"mixed with clean": {out: " D gone.txt\n M kept.txt\n", want: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, parsePorcelain(tc.out))
		})
	}
}

func TestProvider_Get_realRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	ctx := context.Background()
	repo := t.TempDir()

	run(t, repo, "git", "init")
	run(t, repo, "git", "config", "user.email", "test@example.com")
	run(t, repo, "git", "config", "user.name", "Test")

	writeFile(t, filepath.Join(repo, "a.txt"), "base\n")
	run(t, repo, "git", "add", ".")
	run(t, repo, "git", "commit", "-m", "base")
	defaultBranch := strings.TrimSpace(runOut(t, repo, "git", "rev-parse", "--abbrev-ref", "HEAD"))

	p := NewProvider()
	sub := filepath.Join(repo, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	st, err := p.Discover(ctx, sub)
	require.NoError(t, err)
	assert.True(t, st.IsRepo)
	assert.Equal(t, defaultBranch, st.Branch)
	assert.False(t, st.Dirty)

	writeFile(t, filepath.Join(repo, "a.txt"), "changed\n")
	st, err = p.Discover(ctx, repo)
	require.NoError(t, err)
	assert.True(t, st.Dirty)

	run(t, repo, "git", "checkout", "a.txt")
	writeFile(t, filepath.Join(repo, "untracked.txt"), "x\n")
	st, err = p.Discover(ctx, repo)
	require.NoError(t, err)
	assert.True(t, st.Dirty)

	p.IncludeUntracked = false
	st, err = p.Discover(ctx, repo)
	require.NoError(t, err)
	assert.False(t, st.Dirty)

	head := strings.TrimSpace(runOut(t, repo, "git", "rev-parse", "HEAD"))
	run(t, repo, "git", "checkout", "--detach")
	st, err = p.Discover(ctx, repo)
	require.NoError(t, err)
	assert.True(t, st.Detached())
	assert.Equal(t, head[:ShortHashLen], st.Head)
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	_ = runOut(t, dir, name, args...)
}

func runOut(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_CONFIG_NOSYSTEM=1",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, string(out))
	}
	return string(out)
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
