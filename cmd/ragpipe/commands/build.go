// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragpipe/ragpipe/internal/logging"
	"github.com/ragpipe/ragpipe/internal/pipeline"
	"github.com/ragpipe/ragpipe/internal/rag"
)

// NewBuildCmd constructs the `ragpipe build` command, which creates a corpus
// and imports the configured documents into it.
func NewBuildCmd() *cobra.Command {
	var corpusName string
	var uris []string
	var chunkSize int32
	var chunkOverlap int32

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create a RAG corpus and import documents from Cloud Storage",
		Long: `Create a Vertex AI RAG corpus with the configured embedding model and
import the document batch in one pass.

The document list and chunking policy come from config (import.gcs_uris,
import.chunk_size, import.chunk_overlap) and can be overridden per
invocation with flags. The backend deduplicates documents and skips
unsupported formats; skipped files are reported in the summary, not raised
as errors.

Examples:
  ragpipe build --corpus "Docs" --uri gs://bucket/file1.pdf --uri gs://bucket/file2.txt
  ragpipe build   # corpus name and URIs from ragpipe.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if err := cfg.Validate(); err != nil {
				return err
			}

			displayName := cfg.Corpus.DisplayName
			if corpusName != "" {
				displayName = corpusName
			}
			docURIs := cfg.Import.GCSURIs
			if len(uris) > 0 {
				docURIs = uris
			}
			chunking := &rag.ChunkingConfig{
				ChunkSize:    cfg.Import.ChunkSize,
				ChunkOverlap: cfg.Import.ChunkOverlap,
			}
			if cmd.Flags().Changed("chunk-size") {
				chunking.ChunkSize = chunkSize
			}
			if cmd.Flags().Changed("chunk-overlap") {
				chunking.ChunkOverlap = chunkOverlap
			}

			svc, err := rag.NewService(ctx, cfg.Project, cfg.Location,
				rag.WithLogger(log),
				rag.WithEmbeddingModel(cfg.Corpus.EmbeddingModel),
			)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			defer svc.Close()

			p, err := pipeline.New(svc, &pipeline.Config{
				DisplayName: displayName,
				Description: cfg.Corpus.Description,
				GCSURIs:     docURIs,
				Chunking:    chunking,
				SettleDelay: cfg.Import.SettleDelay,
			}, log)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			result, err := p.Run(ctx)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			fmt.Printf("Corpus: %s (%s)\n", result.Corpus.DisplayName, result.Corpus.Name)
			fmt.Printf("Imported: %d, skipped: %d, failed: %d\n",
				result.Summary.ImportedCount, result.Summary.SkippedCount, result.Summary.FailedCount)

			return nil
		},
	}

	cmd.Flags().StringVar(&corpusName, "corpus", "", "Corpus display name (overrides config)")
	cmd.Flags().StringArrayVar(&uris, "uri", nil, "Cloud Storage URI to import (repeatable, overrides config)")
	cmd.Flags().Int32Var(&chunkSize, "chunk-size", 0, "Chunk size in tokens (overrides config)")
	cmd.Flags().Int32Var(&chunkOverlap, "chunk-overlap", 0, "Chunk overlap in tokens (overrides config)")

	return cmd
}
