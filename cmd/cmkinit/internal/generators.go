package internal

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goplus/cmkinit/internal/generator"
	"github.com/spf13/cobra"
)

func newGeneratorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the supported generators",
		Args:  cobra.NoArgs,
		RunE:  runGenerators,
	}
}

func runGenerators(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCMAKE GENERATOR\tCONFIGS\tCMAKE")
	for _, g := range generator.All() {
		configs := "single"
		if g.MultiConfig {
			configs = "multi"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t>= %s\n", g.Name, g.ID, configs, strings.TrimPrefix(g.MinCMake, "v"))
	}
	return w.Flush()
}
