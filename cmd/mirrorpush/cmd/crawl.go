package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var crawlSizes bool

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Discover candidate files without downloading",
	Long: `Walks the remote directory listing and prints every file URL matching
the extension allow-list. Nothing is downloaded or committed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		walker := newWalker(cfg)
		candidates, err := walker.Walk(cmd.Context(), cfg.Remote.BaseURL)
		if err != nil {
			return err
		}

		client := newFetchClient(cfg)
		for _, url := range candidates {
			if crawlSizes {
				if size, ok := client.RemoteSize(cmd.Context(), url); ok {
					info("%s\t%s", url, humanize.IBytes(uint64(size)))
					continue
				}
				info("%s\t(size unknown)", url)
				continue
			}
			info("%s", url)
		}

		info("")
		info("%d candidate file(s).", len(candidates))
		return nil
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlSizes, "sizes", false, "resolve and print remote file sizes")
	rootCmd.AddCommand(crawlCmd)
}
