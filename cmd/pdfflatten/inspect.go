package main

import (
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfflatten/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Print page count and page sizes of a PDF as YAML",
	Long: `Inspect reads a PDF without rendering it and prints its page count and
the width and height of each page in points. Useful for checking a flattened
output against its source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		info, err := inspect.Inspect(args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
