// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flatten implements the PDF flattening pipeline: rasterize every
// page of a PDF, then write the page images back out as a new PDF.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfflatten/internal/assemble"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

var (
	// ErrInputNotFound is returned when the input path does not name an
	// existing regular file. No rendering is attempted.
	ErrInputNotFound = errors.New("input PDF not found")

	// ErrNoPages is returned when the renderer succeeds but yields no pages.
	ErrNoPages = errors.New("renderer produced no pages")
)

// Renderer rasterizes the pages of a PDF, in order.
type Renderer interface {
	Name() string
	Render(ctx context.Context, pdfPath string) ([]image.Image, error)
}

// Assembler writes page images to a multi-page PDF.
type Assembler interface {
	Assemble(images []image.Image, outPath string) error
}

// Flattener runs the render-then-assemble pipeline.
type Flattener struct {
	renderer  Renderer
	assembler Assembler
	log       *zap.SugaredLogger
}

// New creates a Flattener. Output verification belongs to the assembler,
// which checks the written file before it replaces anything at the output
// path.
func New(r Renderer, a Assembler, log *zap.SugaredLogger) *Flattener {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Flattener{
		renderer:  r,
		assembler: a,
		log:       log,
	}
}

// CheckInput verifies that path exists and is a regular file.
func CheckInput(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return fmt.Errorf("checking input %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, path)
	}
	return nil
}

// Flatten renders every page of in and writes the page images to out as a
// single PDF, replacing any file already there. It stops at the first error;
// nothing is retried.
func (f *Flattener) Flatten(ctx context.Context, in, out string) (types.FlattenResult, error) {
	result := types.FlattenResult{
		Input:   in,
		Output:  out,
		Backend: f.renderer.Name(),
		Status:  types.FlattenFailed,
	}
	f.log.Debugw("flatten requested", "input", in, "output", out)

	if err := CheckInput(in); err != nil {
		return result, err
	}

	f.log.Debugw("rendering pages", "backend", f.renderer.Name())
	images, err := f.renderer.Render(ctx, in)
	if err != nil {
		return result, fmt.Errorf("rendering %s: %w", in, err)
	}
	if len(images) == 0 {
		return result, fmt.Errorf("rendering %s: %w", in, ErrNoPages)
	}
	result.Pages = len(images)
	f.log.Debugw("rendered pages", "pages", len(images))

	f.log.Debugw("assembling output", "output", out)
	if err := f.assembler.Assemble(images, out); err != nil {
		if errors.Is(err, assemble.ErrVerify) {
			return result, fmt.Errorf("verifying %s: %w", out, err)
		}
		return result, fmt.Errorf("saving %s: %w", out, err)
	}

	result.Status = types.FlattenDone
	f.log.Debugw("flatten complete", "output", out, "pages", result.Pages)
	return result, nil
}
