package types

// RenderBackend identifies the tool that rasterizes PDF pages.
type RenderBackend string

const (
	// BackendAuto picks the first available backend: poppler, ghostscript, mupdf.
	BackendAuto        RenderBackend = "auto"
	BackendPoppler     RenderBackend = "poppler"
	BackendGhostscript RenderBackend = "ghostscript"
	BackendMuPDF       RenderBackend = "mupdf"
	BackendContainer   RenderBackend = "container"
)

// Backends lists every concrete backend in detection order, followed by the
// container backend, which is never auto-detected.
var Backends = []RenderBackend{BackendPoppler, BackendGhostscript, BackendMuPDF, BackendContainer}

// ImageFormat selects how page images are embedded into the output PDF.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

const (
	// DefaultDPI matches pdf2image's default rendering resolution.
	DefaultDPI = 200

	// DefaultJPEGQuality is used when Format is jpeg and no quality is set.
	DefaultJPEGQuality = 90

	// DefaultContainerImage is a public image shipping poppler-utils.
	DefaultContainerImage = "minidocks/poppler:latest"
)

// RenderConfig holds settings for the rasterization step.
type RenderConfig struct {
	// Backend selects the renderer: auto, poppler, ghostscript, mupdf, or container.
	Backend RenderBackend `json:"backend" yaml:"backend"`

	// DPI is the rendering resolution in dots per inch (default 200).
	DPI int `json:"dpi" yaml:"dpi"`

	// MaxDimension caps the longer side of each page image in pixels.
	// Zero disables downscaling.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`

	// ToolPath is a directory containing pdftoppm / gs. When empty the
	// binaries are resolved on $PATH.
	ToolPath string `json:"tool_path,omitempty" yaml:"tool_path,omitempty"`

	// ContainerImage is the image used by the container backend.
	ContainerImage string `json:"container_image" yaml:"container_image"`
}

// AssembleConfig holds settings for writing page images back into a PDF.
type AssembleConfig struct {
	// DPI determines page size: pixels * 72 / DPI points. It should match
	// RenderConfig.DPI so the output keeps the source page dimensions.
	DPI int `json:"dpi" yaml:"dpi"`

	// Format selects the embedded image encoding: png or jpeg.
	Format ImageFormat `json:"format" yaml:"format"`

	// JPEGQuality is the JPEG quality (1-100) when Format is jpeg.
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`

	// Verify re-reads the output and checks its page count.
	Verify bool `json:"verify" yaml:"verify"`
}

// FlattenConfig groups the render and assemble settings for one run.
type FlattenConfig struct {
	Render   RenderConfig   `json:"render" yaml:"render"`
	Assemble AssembleConfig `json:"assemble" yaml:"assemble"`
}

// DefaultFlattenConfig returns the configuration used when no flags, env, or
// config file override it.
func DefaultFlattenConfig() FlattenConfig {
	return FlattenConfig{
		Render: RenderConfig{
			Backend:        BackendAuto,
			DPI:            DefaultDPI,
			ContainerImage: DefaultContainerImage,
		},
		Assemble: AssembleConfig{
			DPI:         DefaultDPI,
			Format:      FormatPNG,
			JPEGQuality: DefaultJPEGQuality,
			Verify:      true,
		},
	}
}
