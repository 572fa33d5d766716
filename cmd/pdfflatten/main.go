// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfflatten CLI.
//
// pdfflatten rasterizes every page of a PDF and writes the page images back
// out as a new, image-only PDF.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfflatten/internal/logging"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE once flags and config are resolved.
var logger = logging.Nop()

// rootCmd flattens a single PDF; subcommands cover batch runs and diagnostics.
var rootCmd = &cobra.Command{
	Use:   "pdfflatten <input_pdf> <output_pdf>",
	Short: "Rasterize a PDF's pages and rebuild it as an image-only PDF",
	Long: `pdfflatten renders every page of the input PDF to an image using an
external renderer (poppler, Ghostscript, MuPDF, or poppler in a container) and
writes those images, in order, as the pages of a new PDF. Any existing file at
the output path is replaced.

The output keeps the look of each page but drops its text, vector, form, and
annotation layers.`,
	Args: requireInputOutput,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(viper.GetBool("verbose"))
		return nil
	},
	RunE: runFlatten,
}

// requireInputOutput rejects invocations with fewer than two positional
// arguments. Extra arguments are ignored.
func requireInputOutput(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected <input_pdf> <output_pdf>, got %d argument(s)", len(args))
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultFlattenConfig()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./pdfflatten.yaml or ~/.config/pdfflatten/pdfflatten.yaml)")
	flags.String("backend", string(defaults.Render.Backend), "render backend: auto, poppler, ghostscript, mupdf, or container")
	flags.Int("dpi", defaults.Render.DPI, "rendering resolution in dots per inch")
	flags.String("format", string(defaults.Assemble.Format), "image encoding inside the output PDF: png or jpeg")
	flags.Int("jpeg-quality", defaults.Assemble.JPEGQuality, "JPEG quality (1-100) when --format=jpeg")
	flags.Int("max-dimension", 0, "downscale pages whose longer side exceeds this many pixels (0 = off)")
	flags.String("tool-path", "", "directory containing pdftoppm / gs (default: search $PATH)")
	flags.String("container-image", defaults.Render.ContainerImage, "image used by the container backend")
	flags.Bool("verify", defaults.Assemble.Verify, "re-read the output and check its page count")
	flags.BoolP("verbose", "v", false, "log each pipeline step")

	for key, flag := range map[string]string{
		"backend":         "backend",
		"dpi":             "dpi",
		"format":          "format",
		"jpeg_quality":    "jpeg-quality",
		"max_dimension":   "max-dimension",
		"tool_path":       "tool-path",
		"container_image": "container-image",
		"verify":          "verify",
		"verbose":         "verbose",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfflatten")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfflatten"))
		}
	}

	viper.SetEnvPrefix("PDFFLATTEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the run configuration from flags, env, and config file.
func loadConfig() types.FlattenConfig {
	cfg := types.DefaultFlattenConfig()

	cfg.Render.Backend = types.RenderBackend(strings.ToLower(viper.GetString("backend")))
	cfg.Render.DPI = viper.GetInt("dpi")
	cfg.Render.MaxDimension = viper.GetInt("max_dimension")
	cfg.Render.ToolPath = viper.GetString("tool_path")
	cfg.Render.ContainerImage = viper.GetString("container_image")

	cfg.Assemble.DPI = cfg.Render.DPI
	cfg.Assemble.Format = types.ImageFormat(strings.ToLower(viper.GetString("format")))
	cfg.Assemble.JPEGQuality = viper.GetInt("jpeg_quality")
	cfg.Assemble.Verify = viper.GetBool("verify")

	return cfg
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
