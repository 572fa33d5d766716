// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfflatten/internal/container"
	"github.com/pdiddy/pdfflatten/pkg/types"
)

const (
	containerWorkDir = "/work"
	containerInput   = "in.pdf"
)

// ContainerRenderer runs pdftoppm inside a container image. The input is
// copied into a scratch directory that is bind-mounted at /work, and the
// pages are read back from the same directory.
type ContainerRenderer struct {
	runtime container.Runtime
	image   string
	dpi     int
}

// NewContainerRenderer creates a renderer that uses rt to run image. It
// verifies that the image exists locally before returning.
func NewContainerRenderer(rt container.Runtime, image string, dpi int) (*ContainerRenderer, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("render image not available in %s: %w", rt.Name(), err)
	}
	if dpi <= 0 {
		dpi = types.DefaultDPI
	}
	return &ContainerRenderer{runtime: rt, image: image, dpi: dpi}, nil
}

func (c *ContainerRenderer) Name() string { return string(types.BackendContainer) }

func (c *ContainerRenderer) Render(ctx context.Context, pdfPath string) ([]image.Image, error) {
	workDir, err := os.MkdirTemp("", "pdfflatten-container-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := copyFile(pdfPath, filepath.Join(workDir, containerInput)); err != nil {
		return nil, fmt.Errorf("staging %s: %w", pdfPath, err)
	}

	args := []string{
		binPdftoppm,
		"-r", strconv.Itoa(c.dpi),
		"-png",
		path.Join(containerWorkDir, containerInput),
		path.Join(containerWorkDir, pagePrefix),
	}
	mounts := []container.Mount{{HostPath: workDir, ContainerPath: containerWorkDir}}

	var stderr bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, mounts, args, io.Discard, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	return readPages(workDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
