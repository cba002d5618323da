package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl, download, and push changes in batches",
	Long: `Walks the remote directory listing, downloads new or changed files into
the mirror tree, commits and pushes them in batches, then regenerates the
link manifest and pushes it if it changed. Failed downloads and rejected
pushes are reported in the summary; they never abort the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng := newEngine(cfg)
		result, err := eng.Run(cmd.Context())
		if err != nil {
			return err
		}

		info("")
		info("Run complete: %d candidates, %d downloaded (%s), %d unchanged, %d too large, %d failed.",
			result.Candidates, result.Downloaded, humanize.IBytes(uint64(result.Bytes)),
			result.SkippedUnchanged, result.SkippedTooLarge, result.Failed)

		for _, b := range result.Batches {
			line := fmt.Sprintf("batch %d: %d files, %s", b.Batch, len(b.Paths), b.Outcome)
			if b.Label != "" {
				line = fmt.Sprintf("batch %d (%s): %d files, %s", b.Batch, b.Label, len(b.Paths), b.Outcome)
			}
			if b.Err != nil {
				errorf("%s: %s", line, b.Err)
			} else {
				detail("%s", line)
			}
		}

		if failures := result.PushFailures(); failures > 0 {
			return fmt.Errorf("%d batch(es) failed to sync", failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
