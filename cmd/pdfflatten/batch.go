package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfflatten/internal/flatten"
)

var batchCmd = &cobra.Command{
	Use:   "batch <pdf...>",
	Short: "Flatten several PDFs into an output directory",
	Long: `Batch flattens each input PDF in turn, writing <name><suffix>.pdf into
--out-dir. Outputs that already exist are skipped unless --force is given.
A failed file does not stop the batch; the command exits non-zero if any
file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("out-dir", "flattened", "directory for flattened PDFs")
	batchCmd.Flags().String("suffix", flatten.DefaultSuffix, "suffix appended to each output file name")
	batchCmd.Flags().Bool("force", false, "overwrite existing outputs")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outDir, _ := cmd.Flags().GetString("out-dir")
	suffix, _ := cmd.Flags().GetString("suffix")
	force, _ := cmd.Flags().GetBool("force")

	f, err := newFlattener(loadConfig())
	if err != nil {
		return err
	}

	result, err := f.FlattenBatch(cmd.Context(), args, outDir, suffix, force, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to flatten", result.Failed)
	}
	return nil
}
