//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Flatten builds the CLI and flattens in to out with the default settings.
// Usage: mage flatten scans/report.pdf out/report_flat.pdf
func Flatten(in, out string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "--verbose", in, out)
}

// Backends builds the CLI and lists which render backends work on this host.
func Backends() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "backends")
}
