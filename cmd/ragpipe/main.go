// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Command ragpipe is a thin CLI around the Vertex AI RAG managed service:
// it builds a document corpus from Cloud Storage and runs retrieval queries
// against it.
package main

import (
	"fmt"
	"os"

	"github.com/ragpipe/ragpipe/cmd/ragpipe/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
