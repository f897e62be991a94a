// Package version exposes the build identity of the pipekit binary.
//
// Version, commit, branch and build time are injected with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/pipekit/version.Version=1.0.0 \
//	  -X github.com/kbukum/pipekit/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/pipekit
//
// Values left empty are filled from the module build info when available.
package version
