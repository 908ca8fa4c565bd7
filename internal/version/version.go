// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package version holds build-time version information for the ragpipe
// binary, populated via -ldflags:
//
//	go build -ldflags="-X github.com/ragpipe/ragpipe/internal/version.Version=v1.2.3 \
//	                    -X github.com/ragpipe/ragpipe/internal/version.Commit=abc1234 \
//	                    -X github.com/ragpipe/ragpipe/internal/version.BuildDate=2025-01-01"
//
// When built without ldflags (e.g. `go run`), the values fall back to
// human-readable defaults.
package version

// Version is the semantic version of the binary. Defaults to "dev".
var Version = "dev"

// Commit is the short git SHA the binary was built from.
var Commit = "unknown"

// BuildDate is the UTC date the binary was built.
var BuildDate = "unknown"
