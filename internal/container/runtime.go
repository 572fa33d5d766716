// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and execution.
// The container render backend uses it to run poppler from an image when the
// host has no PDF tools installed.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount binds a host directory into the container.
type Mount struct {
	HostPath      string
	ContainerPath string
}

func (m Mount) arg() string {
	return m.HostPath + ":" + m.ContainerPath
}

// Runtime is the slice of a container CLI the container render backend uses.
type Runtime interface {
	// Name returns "docker" or "podman".
	Name() string

	// Available reports whether containers can be started right now.
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run executes args inside a fresh container of image with the given
	// bind mounts, copying the container's stdout and stderr to the writers.
	Run(ctx context.Context, image string, mounts []Mount, args []string, stdout, stderr io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunStreams(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunStreams(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime drives one container CLI. The container backend only needs a
// poppler image with pdftoppm on its PATH, so the two CLIs share everything
// except how they ask whether that image has been pulled.
type runtime struct {
	bin        string
	imageProbe []string // subcommand that exits zero when the image is local
	exec       executor
}

func (r *runtime) Name() string { return r.bin }

// Available requires the CLI on PATH and a daemon (or podman machine) that
// answers "info"; a bare binary cannot start the renderer container.
func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

// ImageExists probes the local image store only. Rendering never pulls, so a
// missing poppler image is reported up front instead of as a slow first run.
func (r *runtime) ImageExists(image string) error {
	probe := append(append([]string{}, r.imageProbe...), image)
	if err := r.exec.RunSilent(r.bin, probe...); err != nil {
		return fmt.Errorf("image %s not found in %s (pull it first): %w", image, r.bin, err)
	}
	return nil
}

// Run starts a throwaway container so no renderer state outlives the page
// images written to the bind-mounted work directory.
func (r *runtime) Run(ctx context.Context, image string, mounts []Mount, args []string, stdout, stderr io.Writer) error {
	full := []string{"run", "--rm"}
	for _, m := range mounts {
		full = append(full, "-v", m.arg())
	}
	full = append(full, image)
	full = append(full, args...)

	if err := r.exec.RunStreams(ctx, r.bin, full, stdout, stderr); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{bin: binDocker, imageProbe: []string{"image", "inspect"}, exec: exec}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{bin: binPodman, imageProbe: []string{"image", "exists"}, exec: exec}
}

var defaultExec = &osExecutor{}

// DetectRuntime returns the first working runtime, preferring docker over
// podman.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	for _, rt := range []*runtime{newDockerRuntime(exec), newPodmanRuntime(exec)} {
		if rt.Available() {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s is installed and running", binDocker, binPodman)
}
