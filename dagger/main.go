// CDMA Visualizer Dagger module for CI/CD pipeline
//
// This module runs the CDMA Visualizer checks in reproducible containers.
//
// Functions include:
// - Test: Run Go tests with the race detector
// - Lint: Run golangci-lint
// - Vuln: Run govulncheck for vulnerability scanning
// - Build: Build the cdma-visualizer binary
// - CI: Run the complete CI pipeline (test, lint, vuln check)

package main

import (
	"context"
	"dagger/cdma-visualizer/internal/dagger"
)

type CdmaVisualizer struct{}

// Base returns a Go container with the source code mounted
func (m *CdmaVisualizer) Base(source *dagger.Directory) *dagger.Container {
	return dag.Container().
		From("golang:1.25").
		WithMountedDirectory("/src", source).
		WithWorkdir("/src").
		WithEnvVariable("CGO_ENABLED", "1")
}

// Test runs all Go tests, including the rapid property tests, under -race
func (m *CdmaVisualizer) Test(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// Lint runs golangci-lint
func (m *CdmaVisualizer) Lint(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "install", "github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest"}).
		WithExec([]string{"golangci-lint", "run", "./..."}).
		Stdout(ctx)
}

// Vuln runs govulncheck
func (m *CdmaVisualizer) Vuln(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "install", "golang.org/x/vuln/cmd/govulncheck@latest"}).
		WithExec([]string{"govulncheck", "./..."}).
		Stdout(ctx)
}

// Build builds the cdma-visualizer binary with the version stamped in
func (m *CdmaVisualizer) Build(source *dagger.Directory, version string) *dagger.File {
	ldflags := "-X main.Version=" + version
	return m.Base(source).
		WithEnvVariable("CGO_ENABLED", "0").
		WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", "bin/cdma-visualizer", "./cmd/cdma-visualizer"}).
		File("/src/bin/cdma-visualizer")
}

// CI runs the complete CI pipeline (test, lint, vuln check)
func (m *CdmaVisualizer) CI(ctx context.Context, source *dagger.Directory) (string, error) {
	if _, err := m.Test(ctx, source); err != nil {
		return "", err
	}

	if _, err := m.Lint(ctx, source); err != nil {
		return "", err
	}

	if _, err := m.Vuln(ctx, source); err != nil {
		return "", err
	}

	return "CI pipeline completed successfully", nil
}
