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

// NewQueryCmd constructs the `ragpipe query` command, which runs a retrieval
// query against the configured corpus.
func NewQueryCmd() *cobra.Command {
	var corpusRef string
	var topK int32
	var threshold float64

	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Retrieve the most relevant passages for a query",
		Long: `Resolve the corpus reference and retrieve the top-K most relevant passages
for the query text by vector similarity.

The corpus may be given as a display name or a fully-qualified resource name
(projects/.../ragCorpora/...). Display names are resolved by listing the
visible corpora; the first exact match wins. Resolution happens on every
invocation, nothing is cached.

Examples:
  ragpipe query "What is the retention policy?"
  ragpipe query --corpus "Docs" --top-k 3 "How do I rotate keys?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if err := cfg.Validate(); err != nil {
				return err
			}

			ref := cfg.Corpus.DisplayName
			if corpusRef != "" {
				ref = corpusRef
			}
			k := cfg.Query.TopK
			if cmd.Flags().Changed("top-k") {
				k = topK
			}
			dist := cfg.Query.DistanceThreshold
			if cmd.Flags().Changed("threshold") {
				dist = threshold
			}
			text := strings.Join(args, " ")

			svc, err := rag.NewService(ctx, cfg.Project, cfg.Location,
				rag.WithLogger(log),
				rag.WithTopK(cfg.Query.TopK),
				rag.WithVectorDistanceThreshold(dist),
			)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer svc.Close()

			passages, err := svc.Query(ctx, ref, text, k)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			if len(passages) == 0 {
				fmt.Println("No passages found.")
				return nil
			}

			for i, p := range passages {
				fmt.Printf("--- %d. score=%.4f source=%s\n", i+1, p.Score, p.SourceURI)
				fmt.Println(p.Text)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&corpusRef, "corpus", "", "Corpus display name or resource name (overrides config)")
	cmd.Flags().Int32Var(&topK, "top-k", 0, "Maximum number of passages to return (overrides config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Vector distance threshold, 0 disables (overrides config)")

	return cmd
}
