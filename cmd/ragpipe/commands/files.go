// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragpipe/ragpipe/internal/logging"
	"github.com/ragpipe/ragpipe/internal/rag"
)

// NewFilesCmd constructs the `ragpipe files` command, which lists the files
// imported into a corpus.
func NewFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files [corpus]",
		Short: "List files imported into a RAG corpus",
		Long: `List the files imported into a corpus, with their state and source URIs.

The corpus may be given as an argument (display name or resource name).
When omitted, the configured corpus is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := cfg.Validate(); err != nil {
				return err
			}

			ref := cfg.Corpus.DisplayName
			if len(args) == 1 {
				ref = args[0]
			}

			svc, err := rag.NewService(ctx, cfg.Project, cfg.Location,
				rag.WithLogger(logging.FromContext(ctx)),
			)
			if err != nil {
				return fmt.Errorf("files: %w", err)
			}
			defer svc.Close()

			corpusName, err := svc.ResolveCorpus(ctx, ref)
			if err != nil {
				return fmt.Errorf("files: %w", err)
			}

			files, err := svc.ListFiles(ctx, corpusName)
			if err != nil {
				return fmt.Errorf("files: %w", err)
			}

			if len(files) == 0 {
				fmt.Println("No files found.")
				return nil
			}

			for _, f := range files {
				fmt.Printf("%s\t%s\t%s\n", f.DisplayName, f.State, strings.Join(f.SourceURIs, ","))
			}

			return nil
		},
	}

	return cmd
}
