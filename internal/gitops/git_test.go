package gitops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRunner records git invocations and returns canned output per verb.
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if err, ok := f.errs[args[0]]; ok {
		return "", err
	}
	return f.outputs[args[0]], nil
}

func (f *fakeRunner) lastCall() []string {
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func TestStagePassesPaths(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Runner: r, Remote: "origin"}

	if err := c.Stage(context.Background(), []string{"a.mp3", "sub/b.jpg"}); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	want := []string{"add", "--", "a.mp3", "sub/b.jpg"}
	got := r.lastCall()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestStageEmptyIsNoop(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Runner: r}
	if err := c.Stage(context.Background(), nil); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("calls = %v, want none", r.calls)
	}
}

func TestCommitNothingToCommit(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{
		"commit": fmt.Errorf("git commit: nothing to commit, working tree clean: exit status 1"),
	}}
	c := &Client{Runner: r}

	err := c.Commit(context.Background(), "msg")
	if !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("err = %v, want ErrNothingToCommit", err)
	}
}

func TestCommitRealFailure(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{
		"commit": fmt.Errorf("git commit: gpg failed to sign the data: exit status 128"),
	}}
	c := &Client{Runner: r}

	err := c.Commit(context.Background(), "msg")
	if err == nil || errors.Is(err, ErrNothingToCommit) {
		t.Errorf("err = %v, want a real failure", err)
	}
}

func TestPushDefaultsToHead(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Runner: r, Remote: "origin"}

	if err := c.Push(context.Background()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	want := "push origin HEAD"
	if got := strings.Join(r.lastCall(), " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestPushConfiguredBranch(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Runner: r, Remote: "origin", Branch: "main"}

	if err := c.Push(context.Background()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	want := "push origin main"
	if got := strings.Join(r.lastCall(), " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestChangedFilesParsesPorcelain(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"status": " M apps_audio/a.mp3\n?? apps_audio/new.jpg\n?? mirror_links.csv",
	}}
	c := &Client{Runner: r}

	files, err := c.ChangedFiles(context.Background(), []string{"apps_audio", "mirror_links.csv"})
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}

	want := []string{"apps_audio/a.mp3", "apps_audio/new.jpg", "mirror_links.csv"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	args := r.lastCall()
	wantArgs := "status --porcelain --untracked-files=all -- apps_audio mirror_links.csv"
	if got := strings.Join(args, " "); got != wantArgs {
		t.Errorf("args = %q, want %q", got, wantArgs)
	}
}

func TestChangedFilesEmptyOutput(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"status": ""}}
	c := &Client{Runner: r}

	files, err := c.ChangedFiles(context.Background(), []string{"apps_audio"})
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}

func TestRepoFullName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"git@github.com:owner/repo.git", "owner/repo"},
		{"git@github.com:owner/repo", "owner/repo"},
		{"https://github.com/owner/repo.git", "owner/repo"},
		{"https://github.com/owner/repo", "owner/repo"},
		{"http://github.com/owner/repo/", "owner/repo"},
		{"https://gitlab.example.com/owner/repo.git", "unknown/unknown"},
		{"file:///srv/git/repo", "unknown/unknown"},
		{"", "unknown/unknown"},
	}
	for _, tt := range tests {
		if got := RepoFullName(tt.in); got != tt.want {
			t.Errorf("RepoFullName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRemoteURL(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"remote": "git@github.com:owner/repo.git"}}
	c := &Client{Runner: r, Remote: "origin"}

	url, err := c.RemoteURL(context.Background())
	if err != nil {
		t.Fatalf("RemoteURL: %v", err)
	}
	if url != "git@github.com:owner/repo.git" {
		t.Errorf("url = %q", url)
	}
	want := "remote get-url origin"
	if got := strings.Join(r.lastCall(), " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}
