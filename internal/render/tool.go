// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfflatten/pkg/types"
)

const (
	binPdftoppm    = "pdftoppm"
	binGhostscript = "gs"

	// pagePrefix is the file prefix every backend writes page images under.
	// Tools append "-<n>.png", zero-padded or not.
	pagePrefix = "page"
)

var pageFileRe = regexp.MustCompile(`^` + pagePrefix + `-(\d+)\.png$`)

// toolRenderer implements Renderer by running a command-line rasterizer that
// writes one PNG per page into a scratch directory. Poppler and Ghostscript
// share this logic; they differ only in binary name and argument layout.
type toolRenderer struct {
	name     types.RenderBackend
	bin      string
	toolPath string
	dpi      int
	args     func(dpi int, pdfPath, outDir string) []string
	exec     executor
}

func newPopplerRenderer(cfg types.RenderConfig, exec executor) *toolRenderer {
	return &toolRenderer{
		name:     types.BackendPoppler,
		bin:      binPdftoppm,
		toolPath: cfg.ToolPath,
		dpi:      cfg.DPI,
		args: func(dpi int, pdfPath, outDir string) []string {
			return []string{"-r", strconv.Itoa(dpi), "-png", pdfPath, filepath.Join(outDir, pagePrefix)}
		},
		exec: exec,
	}
}

func newGhostscriptRenderer(cfg types.RenderConfig, exec executor) *toolRenderer {
	return &toolRenderer{
		name:     types.BackendGhostscript,
		bin:      binGhostscript,
		toolPath: cfg.ToolPath,
		dpi:      cfg.DPI,
		args: func(dpi int, pdfPath, outDir string) []string {
			return []string{
				"-q", "-dSAFER", "-dBATCH", "-dNOPAUSE",
				"-sDEVICE=png16m",
				"-r" + strconv.Itoa(dpi),
				"-o", filepath.Join(outDir, pagePrefix+"-%d.png"),
				pdfPath,
			}
		},
		exec: exec,
	}
}

func (t *toolRenderer) Name() string { return string(t.name) }

// binary returns the command to run: the bare name for a $PATH lookup, or the
// name joined onto the configured tool directory.
func (t *toolRenderer) binary() string {
	if t.toolPath == "" {
		return t.bin
	}
	return filepath.Join(t.toolPath, t.bin)
}

// Available reports whether the tool binary can be found.
func (t *toolRenderer) Available() bool {
	ok, _ := t.describe()
	return ok
}

func (t *toolRenderer) describe() (bool, string) {
	path, err := t.exec.LookPath(t.binary())
	if err != nil {
		return false, fmt.Sprintf("%s not found", t.binary())
	}
	return true, path
}

func (t *toolRenderer) Render(ctx context.Context, pdfPath string) ([]image.Image, error) {
	outDir, err := os.MkdirTemp("", "pdfflatten-"+string(t.name)+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	var stderr bytes.Buffer
	if err := t.exec.Run(ctx, t.binary(), t.args(t.dpi, pdfPath, outDir), &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", t.bin, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", t.bin, err)
	}

	return readPages(outDir)
}

// readPages decodes every page-<n>.png in dir, ordered by n. Other files are
// ignored.
func readPages(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rendered pages: %w", err)
	}

	type pageFile struct {
		num  int
		path string
	}
	var files []pageFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, pageFile{num: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	images := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := decodePNG(f.path)
		if err != nil {
			return nil, fmt.Errorf("decoding page %d: %w", f.num, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
