package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfflatten/internal/render"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List render backends and whether each is usable here",
	Long: `Backends probes for pdftoppm, gs, and a docker/podman runtime (honoring
--tool-path and --container-image) and reports which render backends can run.
With --backend=auto, the first available of poppler, ghostscript, and mupdf
is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BACKEND\tAVAILABLE\tDETAIL")
		for _, s := range render.Probe(cfg.Render) {
			avail := "no"
			if s.Available {
				avail = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Backend, avail, s.Detail)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
