// Package cli implements the seamless command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/app"
)

// MentionLoader writes product-mention rows to the analytics warehouse.
type MentionLoader interface {
	LoadMentions(ctx context.Context, scenes []analytics.SceneRow, mentions []analytics.MentionRow, batchSize int) (analytics.LoadResult, error)
}

// Env supplies the backends commands run against. The returned cleanup
// functions release what was opened.
type Env struct {
	OpenApp    func(ctx context.Context) (*app.App, error)
	OpenLoader func(ctx context.Context) (MentionLoader, func(), error)
}

// NewRootCmd builds the seamless command tree.
func NewRootCmd(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "seamless",
		Short: "Generate seamless ad recommendations for video scenes",
		Long: `seamless turns scene metadata from the video understanding system and a
viewer profile into a shoppable ad overlay with ranked grocery products.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		NewRecommendCmd(env),
		NewPersonasCmd(),
		NewLoadProductsCmd(env),
	)
	return root
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
