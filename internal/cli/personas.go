package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrickwarner/seamlessads/internal/personas"
)

// NewPersonasCmd creates the 'personas' command.
func NewPersonasCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "personas [KEY]",
		Short: "List persona keys or print one persona",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				p, err := personas.Get(args[0])
				if err != nil {
					return err
				}
				return writeIndented(out, p)
			}
			if jsonOutput {
				return writeIndented(out, personas.Keys())
			}
			for _, k := range personas.Keys() {
				fmt.Fprintln(out, k)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}
