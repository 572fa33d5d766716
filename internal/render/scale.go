// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// scaledRenderer wraps a Renderer and shrinks pages whose longer side
// exceeds maxDim.
type scaledRenderer struct {
	Renderer
	maxDim int
}

// WithMaxDimension returns r unchanged when maxDim <= 0, otherwise a renderer
// that downscales every oversized page after r renders it.
func WithMaxDimension(r Renderer, maxDim int) Renderer {
	if maxDim <= 0 {
		return r
	}
	return &scaledRenderer{Renderer: r, maxDim: maxDim}
}

func (s *scaledRenderer) Render(ctx context.Context, pdfPath string) ([]image.Image, error) {
	images, err := s.Renderer.Render(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	for i, img := range images {
		images[i] = Downscale(img, s.maxDim)
	}
	return images, nil
}

// Resampled is a page image that was downscaled after rendering. Source holds
// the bounds at render resolution, which still decide the page's size in the
// output PDF.
type Resampled struct {
	image.Image
	Source image.Rectangle
}

// SourceBounds returns the bounds the page was rendered at.
func (r *Resampled) SourceBounds() image.Rectangle { return r.Source }

// Downscale resizes img so that neither side exceeds maxDim, keeping the
// aspect ratio. Images already within bounds are returned as is; resized
// images are returned as *Resampled.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if maxDim <= 0 || longest <= maxDim {
		return img
	}

	ratio := float64(maxDim) / float64(longest)
	nw := max(1, int(math.Round(float64(w)*ratio)))
	nh := max(1, int(math.Round(float64(h)*ratio)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return &Resampled{Image: dst, Source: b}
}
