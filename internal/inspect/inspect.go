// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect reports page counts and page sizes of PDF files without
// rendering them.
package inspect

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	rpdf "rsc.io/pdf"

	"github.com/pdiddy/pdfflatten/pkg/types"
)

const (
	sourcePdfcpu = "pdfcpu"
	sourceRscPDF = "rsc.io/pdf"
)

func init() {
	api.DisableConfigDir()
}

// Inspect reads the page count and per-page dimensions of the PDF at path
// with pdfcpu. pdfcpu validates strictly; when it rejects the file, Inspect
// falls back to rsc.io/pdf for the page count alone and leaves Pages empty.
func Inspect(path string) (types.DocumentInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return types.DocumentInfo{}, err
	}
	if st.IsDir() {
		return types.DocumentInfo{}, fmt.Errorf("%s is a directory", path)
	}

	info := types.DocumentInfo{Path: path, SizeBytes: st.Size()}

	dims, err := api.PageDimsFile(path)
	if err == nil {
		info.Source = sourcePdfcpu
		info.PageCount = len(dims)
		info.Pages = make([]types.PageInfo, len(dims))
		for i, d := range dims {
			info.Pages[i] = types.PageInfo{Number: i + 1, Width: d.Width, Height: d.Height}
		}
		return info, nil
	}

	n, fbErr := fallbackPageCount(path, st.Size())
	if fbErr != nil {
		return info, fmt.Errorf("reading %s: %w", path, err)
	}
	info.Source = sourceRscPDF
	info.PageCount = n
	return info, nil
}

// fallbackPageCount counts pages with rsc.io/pdf, which tolerates some files
// pdfcpu's validator refuses. rsc.io/pdf panics on certain malformed object
// graphs, so panics are turned into errors.
func fallbackPageCount(path string, size int64) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	doc, err := rpdf.NewReader(f, size)
	if err != nil {
		return 0, err
	}
	n = doc.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("no pages found")
	}
	return n, nil
}
