// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble writes a sequence of page images into a single PDF, one
// image per page, using pdfcpu's image page construction.
package assemble

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	ptypes "github.com/pdiddy/pdfflatten/pkg/types"
)

var (
	// ErrNoImages is returned when Assemble is called with an empty image list.
	ErrNoImages = errors.New("no page images to assemble")

	// ErrVerify is returned when the written PDF does not read back with one
	// page per image. The previous file at the output path is left in place.
	ErrVerify = errors.New("output verification failed")
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// Assembler writes page images to a multi-page PDF at outPath.
type Assembler interface {
	Assemble(images []image.Image, outPath string) error
}

// Writer implements Assembler with pdfcpu.
type Writer struct {
	cfg ptypes.AssembleConfig

	// pageCount reads back the written file when cfg.Verify is set.
	pageCount func(path string) (int, error)
}

// NewWriter validates cfg, fills in defaults, and returns a Writer.
func NewWriter(cfg ptypes.AssembleConfig) (*Writer, error) {
	if cfg.DPI <= 0 {
		cfg.DPI = ptypes.DefaultDPI
	}
	switch cfg.Format {
	case "":
		cfg.Format = ptypes.FormatPNG
	case ptypes.FormatPNG, ptypes.FormatJPEG:
	default:
		return nil, fmt.Errorf("unsupported image format %q (want png or jpeg)", cfg.Format)
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = ptypes.DefaultJPEGQuality
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range 1-100", cfg.JPEGQuality)
	}
	return &Writer{cfg: cfg, pageCount: PageCount}, nil
}

// Config returns the effective configuration after defaults.
func (w *Writer) Config() ptypes.AssembleConfig { return w.cfg }

// Assemble encodes each image and adds it, in order, as one page of a new
// PDF. A page measures its image's pixels at the configured DPI, so the
// output keeps the physical size of the rendered pages. The PDF is written to
// a temporary file next to outPath and renamed into place, so an existing
// file at outPath is replaced only when the write (and, with Verify set, the
// page count check) succeeds.
func (w *Writer) Assemble(images []image.Image, outPath string) error {
	if len(images) == 0 {
		return ErrNoImages
	}

	var check func(string) error
	if w.cfg.Verify {
		check = func(tmpPath string) error {
			n, err := w.pageCount(tmpPath)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrVerify, err)
			}
			if n != len(images) {
				return fmt.Errorf("%w: wrote %d pages, want %d", ErrVerify, n, len(images))
			}
			return nil
		}
	}

	return writeAtomic(outPath, func(f io.Writer) error {
		return w.build(images, f)
	}, check)
}

// SourceSizer is implemented by page images that were resampled after
// rendering. SourceBounds reports the bounds at render resolution, which
// determine the page size instead of the resampled pixels.
type SourceSizer interface {
	SourceBounds() image.Rectangle
}

// PageDim returns the page size, in points, for img at dpi.
func PageDim(img image.Image, dpi int) types.Dim {
	b := img.Bounds()
	if s, ok := img.(SourceSizer); ok {
		b = s.SourceBounds()
	}
	scale := 72 / float64(dpi)
	return types.Dim{Width: float64(b.Dx()) * scale, Height: float64(b.Dy()) * scale}
}

// build lays out one page per image and writes the PDF to out. Every page
// gets its own media box, so it drives pdfcpu's page construction directly
// rather than api.ImportImages, which applies one page size to all images.
func (w *Writer) build(images []image.Image, out io.Writer) error {
	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.IMPORTIMAGES

	first := PageDim(images[0], w.cfg.DPI)
	ctx, err := pdfcpu.CreateContextWithXRefTable(conf, &first)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	pagesIndRef, err := ctx.Pages()
	if err != nil {
		return err
	}
	pagesDict, err := ctx.DereferenceDict(*pagesIndRef)
	if err != nil {
		return err
	}

	for i, img := range images {
		buf, err := w.encode(img)
		if err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}

		// A relative scale of 1 fits the image to the page, which has the
		// image's aspect ratio, so the image covers the whole page.
		dim := PageDim(img, w.cfg.DPI)
		imp := &pdfcpu.Import{
			PageDim: &dim,
			Pos:     types.Center,
			Scale:   1,
			InpUnit: types.POINTS,
		}
		indRef, err := pdfcpu.NewPageForImage(ctx.XRefTable, buf, pagesIndRef, imp)
		if err != nil {
			return fmt.Errorf("adding page %d: %w", i+1, err)
		}
		if err := ctx.SetValid(*indRef); err != nil {
			return err
		}
		if err := model.AppendPageTree(indRef, 1, pagesDict); err != nil {
			return fmt.Errorf("adding page %d: %w", i+1, err)
		}
		ctx.PageCount++
	}

	return api.WriteContext(ctx, out)
}

func (w *Writer) encode(img image.Image) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	var err error
	switch w.cfg.Format {
	case ptypes.FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: w.cfg.JPEGQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return &buf, nil
}

// writeAtomic runs write against a temp file in outPath's directory and
// renames it over outPath on success. A non-nil check runs against the
// closed temp file before the rename. The temp file is removed on failure.
func writeAtomic(outPath string, write func(io.Writer) error, check func(tmpPath string) error) (err error) {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".pdfflatten-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if check != nil {
		if err = check(tmp.Name()); err != nil {
			return err
		}
	}
	if err = os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}
