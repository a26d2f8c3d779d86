package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// steps run inside golang:1.25 from the repository root
var steps = []string{
	"set -e",
	"go test -race ./...",
	"go install github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest",
	"$(go env GOPATH)/bin/golangci-lint run ./...",
	"go install golang.org/x/vuln/cmd/govulncheck@latest",
	"$(go env GOPATH)/bin/govulncheck ./...",
	"go build -o /tmp/cdma-visualizer ./cmd/cdma-visualizer",
}

// This runner drives the pipeline through docker instead of the Dagger SDK.
// The CI workflow exposes the docker socket to this process.
func main() {
	// The workflow runs this from dagger/pipeline, two levels below the root.
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get cwd: %v\n", err)
		os.Exit(1)
	}

	repoRoot := filepath.Clean(filepath.Join(cwd, "..", ".."))

	cmd := exec.Command("docker", "run", "--rm",
		"-v", repoRoot+":/src", "-w", "/src",
		"golang:1.25", "/bin/sh", "-c", strings.Join(steps, "; "))
	fmt.Println("running:", strings.Join(cmd.Args, " "))

	out, err := cmd.CombinedOutput()
	fmt.Print(string(out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("pipeline completed: tests, lint, vulncheck and build passed")
}
