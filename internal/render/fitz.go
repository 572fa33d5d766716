// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/pdfflatten/pkg/types"
)

// FitzRenderer renders pages in-process with MuPDF through go-fitz.
// It needs no external tools, which makes it the detection fallback.
type FitzRenderer struct {
	dpi int
}

// NewFitzRenderer creates a MuPDF renderer at the given resolution.
func NewFitzRenderer(dpi int) *FitzRenderer {
	if dpi <= 0 {
		dpi = types.DefaultDPI
	}
	return &FitzRenderer{dpi: dpi}
}

func (r *FitzRenderer) Name() string { return string(types.BackendMuPDF) }

// Render opens the document and rasterizes each page at r.dpi. The context is
// checked between pages; MuPDF itself cannot be interrupted mid-page.
func (r *FitzRenderer) Render(ctx context.Context, pdfPath string) ([]image.Image, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF with mupdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	images := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(r.dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}
