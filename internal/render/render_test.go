// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfflatten/internal/container"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		bins     map[string]bool
		wantName string
	}{
		{
			name:     "poppler preferred",
			bins:     map[string]bool{"pdftoppm": true, "gs": true},
			wantName: "poppler",
		},
		{
			name:     "ghostscript when poppler missing",
			bins:     map[string]bool{"gs": true},
			wantName: "ghostscript",
		},
		{
			name:     "mupdf when no tools installed",
			bins:     map[string]bool{},
			wantName: "mupdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := detect(withDefaults(types.RenderConfig{}), &mockExecutor{availableBins: tt.bins})
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}

func TestNew(t *testing.T) {
	emptyDir := t.TempDir()

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(types.RenderConfig{Backend: "imagemagick"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown render backend "imagemagick"`)
	})

	t.Run("mupdf needs no tools", func(t *testing.T) {
		r, err := New(types.RenderConfig{Backend: types.BackendMuPDF})
		require.NoError(t, err)
		assert.Equal(t, "mupdf", r.Name())
	})

	t.Run("explicit poppler missing from tool path", func(t *testing.T) {
		_, err := New(types.RenderConfig{Backend: types.BackendPoppler, ToolPath: emptyDir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poppler backend unavailable")
		assert.Contains(t, err.Error(), filepath.Join(emptyDir, "pdftoppm"))
	})

	t.Run("explicit ghostscript missing from tool path", func(t *testing.T) {
		_, err := New(types.RenderConfig{Backend: types.BackendGhostscript, ToolPath: emptyDir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghostscript backend unavailable")
	})

	t.Run("max dimension wraps renderer", func(t *testing.T) {
		r, err := New(types.RenderConfig{Backend: types.BackendMuPDF, MaxDimension: 800})
		require.NoError(t, err)
		_, ok := r.(*scaledRenderer)
		assert.True(t, ok, "expected scaledRenderer, got %T", r)
		assert.Equal(t, "mupdf", r.Name())
	})
}

func TestFitzRenderer_MissingFile(t *testing.T) {
	r := NewFitzRenderer(0)
	assert.Equal(t, types.DefaultDPI, r.dpi)

	_, err := r.Render(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening PDF with mupdf")
}

// fakeRuntime implements container.Runtime. Run emulates pdftoppm by writing
// pages into the first mount's host directory.
type fakeRuntime struct {
	imageErr error
	runErr   error
	pages    int

	gotImage string
	gotArgs  []string
	staged   []byte
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, imageRef string, mounts []container.Mount, args []string, _, stderr io.Writer) error {
	f.gotImage = imageRef
	f.gotArgs = args
	if f.runErr != nil {
		_, _ = stderr.Write([]byte("I/O Error: Couldn't open file"))
		return f.runErr
	}
	host := mounts[0].HostPath
	f.staged, _ = os.ReadFile(filepath.Join(host, containerInput))
	for i := 1; i <= f.pages; i++ {
		img := image.NewGray(image.Rect(0, 0, i, 2))
		if err := writeGray(filepath.Join(host, "page-"+strconv.Itoa(i)+".png"), img); err != nil {
			return err
		}
	}
	return nil
}

func writeGray(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func TestContainerRenderer(t *testing.T) {
	in := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF-1.7 fake"), 0o644))

	rt := &fakeRuntime{pages: 3}
	r, err := NewContainerRenderer(rt, "minidocks/poppler:latest", 120)
	require.NoError(t, err)
	assert.Equal(t, "container", r.Name())

	images, err := r.Render(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		assert.Equal(t, i+1, img.Bounds().Dx())
	}

	assert.Equal(t, "minidocks/poppler:latest", rt.gotImage)
	assert.Equal(t, []string{"pdftoppm", "-r", "120", "-png", "/work/in.pdf", "/work/page"}, rt.gotArgs)
	assert.Equal(t, "%PDF-1.7 fake", string(rt.staged))
}

func TestContainerRenderer_Errors(t *testing.T) {
	t.Run("image missing", func(t *testing.T) {
		_, err := NewContainerRenderer(&fakeRuntime{imageErr: errors.New("no such image")}, "img", 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render image not available in docker")
	})

	t.Run("run failure carries stderr", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "a.pdf")
		require.NoError(t, os.WriteFile(in, []byte("%PDF"), 0o644))

		r, err := NewContainerRenderer(&fakeRuntime{runErr: errors.New("exit status 1")}, "img", 100)
		require.NoError(t, err)
		_, err = r.Render(context.Background(), in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Couldn't open file")
	})

	t.Run("input missing", func(t *testing.T) {
		r, err := NewContainerRenderer(&fakeRuntime{}, "img", 100)
		require.NoError(t, err)
		_, err = r.Render(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staging")
	})
}

func TestProbe(t *testing.T) {
	exec := &mockExecutor{availableBins: map[string]bool{"gs": true}}
	detectRT := func() (container.Runtime, error) {
		return &fakeRuntime{imageErr: errors.New("missing")}, nil
	}

	statuses := probe(withDefaults(types.RenderConfig{}), exec, detectRT)
	require.Len(t, statuses, len(types.Backends))

	byName := make(map[types.RenderBackend]Status)
	for _, s := range statuses {
		byName[s.Backend] = s
	}
	assert.False(t, byName[types.BackendPoppler].Available)
	assert.Contains(t, byName[types.BackendPoppler].Detail, "pdftoppm not found")
	assert.True(t, byName[types.BackendGhostscript].Available)
	assert.Equal(t, "/usr/bin/gs", byName[types.BackendGhostscript].Detail)
	assert.True(t, byName[types.BackendMuPDF].Available)
	assert.False(t, byName[types.BackendContainer].Available)
	assert.Contains(t, byName[types.BackendContainer].Detail, "not pulled")
}

func TestProbe_NoContainerRuntime(t *testing.T) {
	detectRT := func() (container.Runtime, error) {
		return nil, errors.New("no container runtime available")
	}
	statuses := probe(withDefaults(types.RenderConfig{}), &mockExecutor{}, detectRT)
	last := statuses[len(statuses)-1]
	assert.Equal(t, types.BackendContainer, last.Backend)
	assert.False(t, last.Available)
	assert.Equal(t, "no container runtime available", last.Detail)
}
