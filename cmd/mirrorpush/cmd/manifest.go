package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/adhami/mirrorpush/internal/batch"
	"github.com/adhami/mirrorpush/internal/gitops"
	"github.com/adhami/mirrorpush/internal/manifest"
	"github.com/spf13/cobra"
)

var manifestPush bool

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Regenerate the link manifest",
	Long: `Walks the local mirror tree and regenerates the CSV manifest of access
URLs. With --push, commits and pushes the manifest if git reports it changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		git := newGitClient(cfg)

		repoFullName := "unknown/unknown"
		if remoteURL, remoteErr := git.RemoteURL(cmd.Context()); remoteErr == nil {
			repoFullName = gitops.RepoFullName(remoteURL)
		}

		gen := &manifest.Generator{
			MirrorDir:    cfg.Mirror.Dir,
			MirrorName:   filepath.Base(cfg.Mirror.Dir),
			BaseURL:      cfg.Remote.BaseURL,
			RepoFullName: repoFullName,
			Branch:       cfg.Git.Branch,
			Extensions:   cfg.Mirror.Extensions,
		}
		if err := gen.Write(cfg.Manifest.File); err != nil {
			return err
		}
		info("Wrote manifest: %s", cfg.Manifest.File)

		if !manifestPush {
			return nil
		}

		changed, err := git.ChangedFiles(cmd.Context(), []string{cfg.Manifest.File})
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			info("Manifest unchanged, nothing to push.")
			return nil
		}

		coord := &batch.Coordinator{
			Sync:          git,
			Size:          cfg.Mirror.BatchSize,
			MessagePrefix: "Update mirror files",
			Log:           slog.Default(),
		}
		coord.FlushPaths(cmd.Context(), "manifest", changed)
		for _, b := range coord.Results() {
			if b.Err != nil {
				errorf("manifest sync: %s: %s", b.Outcome, b.Err)
			} else {
				info("Manifest sync: %s.", b.Outcome)
			}
		}
		return nil
	},
}

func init() {
	manifestCmd.Flags().BoolVar(&manifestPush, "push", false, "commit and push the manifest if changed")
	rootCmd.AddCommand(manifestCmd)
}
