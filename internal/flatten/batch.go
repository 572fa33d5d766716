// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flatten

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfflatten/pkg/types"
)

// DefaultSuffix is appended to the input's base name to form batch outputs.
const DefaultSuffix = "_flat"

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Flattened int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Flattened + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OutputPath returns outDir/<base of in><suffix>.pdf.
func OutputPath(in, outDir, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(outDir, base+suffix+".pdf")
}

// FlattenOne flattens in into outDir, printing a status line to w. An
// existing output is skipped unless force is set. An output path that names
// the input itself always fails.
func (f *Flattener) FlattenOne(ctx context.Context, in, outDir, suffix string, force bool, w io.Writer) types.FlattenStatus {
	out := OutputPath(in, outDir, suffix)
	name := filepath.Base(in)

	if samePath(in, out) {
		fmt.Fprintf(w, "failed:    %s (output %s would overwrite the input)\n", name, out)
		return types.FlattenFailed
	}
	if !force {
		if _, err := os.Stat(out); err == nil {
			fmt.Fprintf(w, "skipped:   %s (%s already exists)\n", name, out)
			return types.FlattenSkipped
		}
	}

	res, err := f.Flatten(ctx, in, out)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return types.FlattenFailed
	}

	fmt.Fprintf(w, "flattened: %s -> %s (%d pages)\n", name, res.Output, res.Pages)
	return types.FlattenDone
}

// FlattenBatch processes inputs one after another, printing per-file status
// to w and returning a summary. An input whose output path was already
// produced earlier in the same batch fails instead of being skipped. A
// failure does not stop the batch; a cancelled context does.
func (f *Flattener) FlattenBatch(ctx context.Context, inputs []string, outDir, suffix string, force bool, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	// claimed maps each output path to the input that produced it.
	claimed := make(map[string]string, len(inputs))

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "\nBatch interrupted after %d of %d files\n", result.Total(), len(inputs))
			return result, err
		}

		out := OutputPath(in, outDir, suffix)
		key := absPath(out)
		if prev, ok := claimed[key]; ok {
			fmt.Fprintf(w, "failed:    %s (output %s collides with %s)\n", filepath.Base(in), out, prev)
			result.Failed++
			continue
		}
		claimed[key] = in

		switch f.FlattenOne(ctx, in, outDir, suffix, force, w) {
		case types.FlattenDone:
			result.Flattened++
		case types.FlattenSkipped:
			result.Skipped++
		case types.FlattenFailed:
			result.Failed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d flattened, %d skipped, %d failed (total: %d)\n",
		result.Flattened, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// samePath reports whether a and b name the same file, either by path or,
// when both exist, by identity.
func samePath(a, b string) bool {
	if absPath(a) == absPath(b) {
		return true
	}
	sa, errA := os.Stat(a)
	sb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(sa, sb)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
