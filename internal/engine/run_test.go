package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/adhami/mirrorpush/internal/batch"
	"github.com/adhami/mirrorpush/internal/config"
	"github.com/adhami/mirrorpush/internal/crawl"
	"github.com/adhami/mirrorpush/internal/fetch"
	"github.com/adhami/mirrorpush/internal/gitops"
	"github.com/adhami/mirrorpush/internal/index"
)

// fakeGitRunner pretends every git operation succeeds and reports the
// manifest as changed.
type fakeGitRunner struct {
	calls        [][]string
	statusOutput string
	pushErr      error
}

func (f *fakeGitRunner) Run(ctx context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	switch args[0] {
	case "status":
		return f.statusOutput, nil
	case "remote":
		return "https://github.com/owner/repo.git", nil
	case "push":
		if f.pushErr != nil {
			return "", f.pushErr
		}
	}
	return "", nil
}

func (f *fakeGitRunner) countCalls(verb string) int {
	var n int
	for _, call := range f.calls {
		if call[0] == verb {
			n++
		}
	}
	return n
}

// newMirrorServer serves a two-level listing: root has a.mp3 and sub/, and
// sub/ has b.jpg plus a parent link.
func newMirrorServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/apps_audio/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="../">../</a><a href="a.mp3">a.mp3</a><a href="sub/">sub/</a>`))
	})
	mux.HandleFunc("/apps_audio/sub/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="../">../</a><a href="b.jpg">b.jpg</a>`))
	})
	mux.HandleFunc("/apps_audio/a.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3 bytes"))
	})
	mux.HandleFunc("/apps_audio/sub/b.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpg bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T, baseURL string, runner gitops.Runner, batchSize int) (*Engine, *config.Config) {
	t.Helper()
	workDir := t.TempDir()

	cfg := &config.Config{
		Version: 1,
		Remote: config.RemoteConfig{
			BaseURL:    baseURL,
			MaxRetries: 2,
		},
		Mirror: config.MirrorConfig{
			Dir:        filepath.Join(workDir, "apps_audio"),
			Extensions: []string{".mp3", ".jpg"},
			BatchSize:  batchSize,
		},
		Git:      config.GitConfig{Remote: "origin"},
		Manifest: config.ManifestConfig{File: filepath.Join(workDir, "mirror_links.csv")},
	}

	git := &gitops.Client{Runner: runner, Remote: cfg.Git.Remote}

	eng := &Engine{
		Config: cfg,
		Walker: &crawl.Walker{
			Index:      &index.Fetcher{},
			Extensions: cfg.Mirror.Extensions,
		},
		Fetch: &fetch.Client{
			Retries: cfg.Remote.MaxRetries,
		},
		Batches: &batch.Coordinator{
			Sync:          git,
			Size:          cfg.Mirror.BatchSize,
			MessagePrefix: "Update mirror files",
		},
		Git: git,
	}
	return eng, cfg
}

func TestRunMirrorsTreeAndPushes(t *testing.T) {
	srv := newMirrorServer(t)
	runner := &fakeGitRunner{statusOutput: "?? mirror_links.csv"}
	eng, cfg := newTestEngine(t, srv.URL+"/apps_audio/", runner, 2)

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Candidates != 2 {
		t.Errorf("candidates = %d", result.Candidates)
	}
	if result.Downloaded != 2 {
		t.Errorf("downloaded = %d", result.Downloaded)
	}

	for _, rel := range []string{"a.mp3", "sub/b.jpg"} {
		path := filepath.Join(cfg.Mirror.Dir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing mirrored file %s: %v", rel, err)
		}
	}

	if _, err := os.Stat(cfg.Manifest.File); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if !result.ManifestSynced {
		t.Error("manifest not synced")
	}

	// One full batch of two downloads plus the manifest batch.
	if len(result.Batches) != 2 {
		t.Fatalf("batches = %+v", result.Batches)
	}
	if result.Batches[0].Outcome != batch.OutcomePushed {
		t.Errorf("batch 1 outcome = %v", result.Batches[0].Outcome)
	}
	if result.Batches[1].Label != "manifest" {
		t.Errorf("batch 2 label = %q", result.Batches[1].Label)
	}
	if result.PushFailures() != 0 {
		t.Errorf("push failures = %d", result.PushFailures())
	}
}

func TestRunSecondPassSkipsUnchanged(t *testing.T) {
	srv := newMirrorServer(t)
	runner := &fakeGitRunner{statusOutput: "?? mirror_links.csv"}
	eng, _ := newTestEngine(t, srv.URL+"/apps_audio/", runner, 2)

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Same tree again: everything skips by size, no new download batches.
	runner2 := &fakeGitRunner{statusOutput: ""}
	eng.Git.Runner = runner2
	eng.Batches = &batch.Coordinator{
		Sync:          eng.Git,
		Size:          2,
		MessagePrefix: "Update mirror files",
	}

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if result.Downloaded != 0 {
		t.Errorf("downloaded = %d, want 0", result.Downloaded)
	}
	if result.SkippedUnchanged != 2 {
		t.Errorf("skipped unchanged = %d, want 2", result.SkippedUnchanged)
	}
	if len(result.Batches) != 0 {
		t.Errorf("batches = %+v, want none", result.Batches)
	}
	if result.ManifestSynced {
		t.Error("manifest reported synced with no changes")
	}
}

func TestRunPushFailureIsReportedNotFatal(t *testing.T) {
	srv := newMirrorServer(t)
	runner := &fakeGitRunner{
		statusOutput: "?? mirror_links.csv",
		pushErr:      fmt.Errorf("remote rejected: exit status 1"),
	}
	eng, _ := newTestEngine(t, srv.URL+"/apps_audio/", runner, 1)

	result, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Two download batches plus the manifest batch, all push-failed, and
	// every one was still attempted.
	if len(result.Batches) != 3 {
		t.Fatalf("batches = %+v", result.Batches)
	}
	for i, b := range result.Batches {
		if b.Outcome != batch.OutcomePushFailed {
			t.Errorf("batch %d outcome = %v", i+1, b.Outcome)
		}
	}
	if runner.countCalls("push") != 3 {
		t.Errorf("pushes attempted = %d, want 3", runner.countCalls("push"))
	}
	if result.PushFailures() != 3 {
		t.Errorf("push failures = %d", result.PushFailures())
	}
}

func TestRunFatalWhenMirrorDirUnusable(t *testing.T) {
	workDir := t.TempDir()
	blocker := filepath.Join(workDir, "blocked")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeGitRunner{}
	eng, cfg := newTestEngine(t, "https://host.invalid/apps_audio/", runner, 2)
	cfg.Mirror.Dir = filepath.Join(blocker, "apps_audio")

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("expected fatal error for unusable mirror dir")
	}
	if len(runner.calls) != 0 {
		t.Errorf("git touched despite fatal setup error: %v", runner.calls)
	}
}
