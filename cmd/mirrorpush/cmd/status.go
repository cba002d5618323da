package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show uncommitted changes under the mirror tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		git := newGitClient(cfg)
		changed, err := git.ChangedFiles(cmd.Context(), []string{cfg.Mirror.Dir, cfg.Manifest.File})
		if err != nil {
			return err
		}

		if len(changed) == 0 {
			info("Mirror tree is clean.")
			return nil
		}
		for _, f := range changed {
			info("  %s", f)
		}
		info("")
		info("%d changed/untracked file(s).", len(changed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
