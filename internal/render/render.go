// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages into images. The actual rendering is
// always delegated: to poppler's pdftoppm, to Ghostscript, to MuPDF through
// go-fitz, or to pdftoppm running inside a container.
package render

import (
	"context"
	"fmt"
	"image"

	"github.com/pdiddy/pdfflatten/internal/container"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

// Renderer turns every page of a PDF into an image, in page order.
type Renderer interface {
	// Name returns the backend name, e.g. "poppler".
	Name() string

	// Render rasterizes each page of the PDF at pdfPath.
	Render(ctx context.Context, pdfPath string) ([]image.Image, error)
}

// Status reports whether a backend can be used on this host.
type Status struct {
	Backend   types.RenderBackend `yaml:"backend"`
	Available bool                `yaml:"available"`
	Detail    string              `yaml:"detail"`
}

// New builds the renderer selected by cfg.Backend. BackendAuto (or an empty
// backend) defers to Detect. An explicitly named backend that is not usable
// on this host is an error. When cfg.MaxDimension is set, the returned
// renderer downscales oversized pages.
func New(cfg types.RenderConfig) (Renderer, error) {
	cfg = withDefaults(cfg)

	var (
		r   Renderer
		err error
	)
	switch cfg.Backend {
	case types.BackendAuto:
		r = detect(cfg, defaultExec)
	case types.BackendPoppler:
		r, err = requireTool(newPopplerRenderer(cfg, defaultExec))
	case types.BackendGhostscript:
		r, err = requireTool(newGhostscriptRenderer(cfg, defaultExec))
	case types.BackendMuPDF:
		r = NewFitzRenderer(cfg.DPI)
	case types.BackendContainer:
		r, err = newContainerBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown render backend %q (want auto, poppler, ghostscript, mupdf, or container)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithMaxDimension(r, cfg.MaxDimension), nil
}

// Detect returns the first available backend, trying poppler, then
// Ghostscript, then the built-in MuPDF renderer.
func Detect(cfg types.RenderConfig) Renderer {
	return detect(withDefaults(cfg), defaultExec)
}

func detect(cfg types.RenderConfig, exec executor) Renderer {
	if p := newPopplerRenderer(cfg, exec); p.Available() {
		return p
	}
	if g := newGhostscriptRenderer(cfg, exec); g.Available() {
		return g
	}
	return NewFitzRenderer(cfg.DPI)
}

// Probe reports the availability of every backend in types.Backends.
func Probe(cfg types.RenderConfig) []Status {
	return probe(withDefaults(cfg), defaultExec, container.DetectRuntime)
}

func probe(cfg types.RenderConfig, exec executor, detectRuntime func() (container.Runtime, error)) []Status {
	statuses := make([]Status, 0, len(types.Backends))
	for _, b := range types.Backends {
		s := Status{Backend: b}
		switch b {
		case types.BackendPoppler:
			s.Available, s.Detail = newPopplerRenderer(cfg, exec).describe()
		case types.BackendGhostscript:
			s.Available, s.Detail = newGhostscriptRenderer(cfg, exec).describe()
		case types.BackendMuPDF:
			s.Available, s.Detail = true, "built in (go-fitz)"
		case types.BackendContainer:
			rt, err := detectRuntime()
			if err != nil {
				s.Detail = err.Error()
				break
			}
			if err := rt.ImageExists(cfg.ContainerImage); err != nil {
				s.Detail = fmt.Sprintf("%s available, image %s not pulled", rt.Name(), cfg.ContainerImage)
				break
			}
			s.Available, s.Detail = true, fmt.Sprintf("%s with %s", rt.Name(), cfg.ContainerImage)
		}
		statuses = append(statuses, s)
	}
	return statuses
}

func requireTool(t *toolRenderer) (Renderer, error) {
	if ok, detail := t.describe(); !ok {
		return nil, fmt.Errorf("%s backend unavailable: %s", t.name, detail)
	}
	return t, nil
}

func newContainerBackend(cfg types.RenderConfig) (Renderer, error) {
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}
	c, err := NewContainerRenderer(rt, cfg.ContainerImage, cfg.DPI)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func withDefaults(cfg types.RenderConfig) types.RenderConfig {
	if cfg.Backend == "" {
		cfg.Backend = types.BackendAuto
	}
	if cfg.DPI <= 0 {
		cfg.DPI = types.DefaultDPI
	}
	if cfg.ContainerImage == "" {
		cfg.ContainerImage = types.DefaultContainerImage
	}
	return cfg
}
