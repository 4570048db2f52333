package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrickwarner/seamlessads/internal/analytics"
)

// DefaultBatchSize is the number of rows inserted per transaction.
const DefaultBatchSize = 500

// NewLoadProductsCmd creates the 'load-products' command.
func NewLoadProductsCmd(env Env) *cobra.Command {
	var (
		dryRun    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load-products FILE...",
		Short: "Load structured product mentions into the analytics warehouse",
		Long: `Reads product-mention JSON files ({video_id, scenes:[...]}) and inserts one
row per scene and one row per product mention into ClickHouse.`,
		Example: `  seamless load-products mentions/*.json
  seamless load-products episode1.json --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize < 1 {
				return fmt.Errorf("batch size must be at least 1, got %d", batchSize)
			}
			scenes, mentions, err := analytics.PrepareLoad(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "files: %d\nscenes: %d\nmentions: %d\n", len(args), len(scenes), len(mentions))
				return nil
			}

			loader, closeLoader, err := env.OpenLoader(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLoader()

			res, err := loader.LoadMentions(cmd.Context(), scenes, mentions, batchSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "loaded scenes: %d\nloaded mentions: %d\n", res.Scenes, res.Mentions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse files and print row counts without writing")
	cmd.Flags().IntVar(&batchSize, "batch-size", DefaultBatchSize, "Rows per insert transaction")
	return cmd
}
