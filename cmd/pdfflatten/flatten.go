package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfflatten/internal/assemble"
	"github.com/pdiddy/pdfflatten/internal/flatten"
	"github.com/pdiddy/pdfflatten/internal/render"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

func runFlatten(cmd *cobra.Command, args []string) error {
	// Arguments are valid; further errors are not usage problems.
	cmd.SilenceUsage = true

	in, out := args[0], args[1]
	logger.Debugw("arguments parsed", "input", in, "output", out)

	// Check before building a renderer so a typo never spins up a tool.
	if err := flatten.CheckInput(in); err != nil {
		return err
	}

	f, err := newFlattener(loadConfig())
	if err != nil {
		return err
	}

	res, err := f.Flatten(cmd.Context(), in, out)
	if err != nil {
		logger.Debugw("flatten failed", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "flattened %s -> %s (%d pages, %s)\n", res.Input, res.Output, res.Pages, res.Backend)
	return nil
}

// newFlattener wires the configured renderer and assembler into a pipeline.
func newFlattener(cfg types.FlattenConfig) (*flatten.Flattener, error) {
	r, err := render.New(cfg.Render)
	if err != nil {
		return nil, err
	}
	w, err := assemble.NewWriter(cfg.Assemble)
	if err != nil {
		return nil, err
	}
	logger.Debugw("pipeline configured",
		"backend", r.Name(),
		"dpi", cfg.Render.DPI,
		"format", w.Config().Format,
		"verify", cfg.Assemble.Verify,
	)
	return flatten.New(r, w, logger), nil
}
