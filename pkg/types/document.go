// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FlattenStatus indicates the outcome of flattening one PDF.
type FlattenStatus string

const (
	FlattenDone    FlattenStatus = "flattened"
	FlattenSkipped FlattenStatus = "skipped"
	FlattenFailed  FlattenStatus = "failed"
)

// FlattenResult describes one completed (or attempted) flatten run.
type FlattenResult struct {
	// Input is the source PDF path.
	Input string `json:"input" yaml:"input"`

	// Output is the path of the flattened PDF.
	Output string `json:"output" yaml:"output"`

	// Pages is the number of pages rendered and written.
	Pages int `json:"pages" yaml:"pages"`

	// Backend names the renderer that produced the page images.
	Backend string `json:"backend" yaml:"backend"`

	// Status is the outcome of the run.
	Status FlattenStatus `json:"status" yaml:"status"`
}

// PageInfo holds the media box size of one page, in PDF points.
type PageInfo struct {
	Number int     `json:"number" yaml:"number"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DocumentInfo summarizes a PDF file without rendering it.
type DocumentInfo struct {
	Path      string     `json:"path" yaml:"path"`
	SizeBytes int64      `json:"size_bytes" yaml:"size_bytes"`
	PageCount int        `json:"page_count" yaml:"page_count"`
	Pages     []PageInfo `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Source names the library that produced the page count: "pdfcpu" or
	// "rsc.io/pdf" when pdfcpu rejected the file.
	Source string `json:"source" yaml:"source"`
}
