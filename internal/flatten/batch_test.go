// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flatten

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfflatten/internal/assemble"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

// selectiveRenderer returns different results per input path.
type selectiveRenderer struct {
	pages  map[string]int
	errors map[string]error
}

func (s *selectiveRenderer) Name() string { return "selective" }

func (s *selectiveRenderer) Render(_ context.Context, pdfPath string) ([]image.Image, error) {
	if err, ok := s.errors[pdfPath]; ok {
		return nil, err
	}
	if n, ok := s.pages[pdfPath]; ok {
		return pages(n), nil
	}
	return nil, errors.New("unexpected path: " + pdfPath)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, outDir, suffix, want string
	}{
		{"/scans/report.pdf", "out", "_flat", filepath.Join("out", "report_flat.pdf")},
		{"report.PDF", "out", "", filepath.Join("out", "report.pdf")},
		{"a.b.c.pdf", "/x", "_OCR", filepath.Join("/x", "a.b.c_OCR.pdf")},
		{"noext", ".", "_flat", "noext_flat.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.in, tt.outDir, tt.suffix))
		})
	}
}

func TestFlattenOne(t *testing.T) {
	tests := []struct {
		name       string
		renderErr  error
		preCreate  bool
		force      bool
		wantStatus types.FlattenStatus
		wantLog    string
	}{
		{name: "successful flatten", wantStatus: types.FlattenDone, wantLog: "flattened:"},
		{name: "skip existing output", preCreate: true, wantStatus: types.FlattenSkipped, wantLog: "skipped:"},
		{name: "force overwrites existing", preCreate: true, force: true, wantStatus: types.FlattenDone, wantLog: "flattened:"},
		{name: "render failure", renderErr: errors.New("gs crashed"), wantStatus: types.FlattenFailed, wantLog: "failed:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := setupPDF(t, dir, "doc.pdf")
			outDir := filepath.Join(dir, "out")
			require.NoError(t, os.MkdirAll(outDir, 0o755))
			if tt.preCreate {
				require.NoError(t, os.WriteFile(OutputPath(in, outDir, DefaultSuffix), []byte("existing"), 0o644))
			}

			f := New(&fakeRenderer{pages: pages(2), err: tt.renderErr}, newWriter(t), nil)
			var log bytes.Buffer
			status := f.FlattenOne(context.Background(), in, outDir, DefaultSuffix, tt.force, &log)

			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, log.String(), tt.wantLog)
		})
	}
}

func TestFlattenBatch(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		inputs = append(inputs, setupPDF(t, dir, name))
	}
	outDir := filepath.Join(dir, "flat")

	// Pre-create output for "b" to trigger skip.
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "b_flat.pdf"), []byte("existing"), 0o644))

	r := &selectiveRenderer{
		pages: map[string]int{
			inputs[0]: 3,
			inputs[1]: 1,
		},
		errors: map[string]error{
			inputs[2]: errors.New("bad pdf"),
		},
	}

	var log bytes.Buffer
	result, err := New(r, newWriter(t), nil).FlattenBatch(context.Background(), inputs, outDir, DefaultSuffix, false, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Flattened)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 3, result.Total())

	output := log.String()
	assert.Contains(t, output, "Batch summary: 1 flattened, 1 skipped, 1 failed (total: 3)")
	assert.Contains(t, output, "a_flat.pdf (3 pages)")
	assert.Contains(t, output, "bad pdf")

	data, err := os.ReadFile(filepath.Join(outDir, "b_flat.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data), "skipped output must be left alone")
}

func TestFlattenBatch_CreatesOutDir(t *testing.T) {
	dir := t.TempDir()
	in := setupPDF(t, dir, "x.pdf")
	outDir := filepath.Join(dir, "nested", "out")

	var log bytes.Buffer
	result, err := New(&fakeRenderer{pages: pages(1)}, newWriter(t), nil).
		FlattenBatch(context.Background(), []string{in}, outDir, DefaultSuffix, false, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Flattened)
	assert.FileExists(t, filepath.Join(outDir, "x_flat.pdf"))
}

func TestFlattenBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{setupPDF(t, dir, "a.pdf"), setupPDF(t, dir, "b.pdf")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRenderer{pages: pages(1)}
	var log bytes.Buffer
	result, err := New(r, newWriter(t), nil).FlattenBatch(ctx, inputs, filepath.Join(dir, "out"), DefaultSuffix, false, &log)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Total())
	assert.Zero(t, r.calls)
	assert.True(t, strings.Contains(log.String(), "Batch interrupted after 0 of 2 files"))
}

func TestFlattenBatch_NameCollision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o755))
	first := setupPDF(t, filepath.Join(dir, "a"), "x.pdf")
	second := setupPDF(t, filepath.Join(dir, "b"), "x.pdf")
	outDir := filepath.Join(dir, "out")

	r := &selectiveRenderer{pages: map[string]int{first: 2, second: 5}}
	var log bytes.Buffer
	result, err := New(r, newWriter(t), nil).FlattenBatch(context.Background(), []string{first, second}, outDir, DefaultSuffix, false, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Flattened)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, log.String(), "collides with "+first)

	n, err := assemble.PageCount(filepath.Join(outDir, "x_flat.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "first input's output must survive")
}

func TestFlattenBatch_RefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	in := setupPDF(t, dir, "doc.pdf")

	r := &fakeRenderer{pages: pages(1)}
	var log bytes.Buffer
	result, err := New(r, newWriter(t), nil).FlattenBatch(context.Background(), []string{in}, dir, "", true, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, r.calls)
	assert.Contains(t, log.String(), "would overwrite the input")

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
}
