// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines all Cobra CLI commands for the ragpipe binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ragpipe/ragpipe/internal/config"
	"github.com/ragpipe/ragpipe/internal/logging"
)

// configPath holds the --config flag value.
var configPath string

// cfg is the effective configuration, resolved once before any subcommand
// runs.
var cfg *config.Config

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragpipe",
		Short: "ragpipe — build and query Vertex AI RAG corpora",
		Long: `ragpipe is a thin client around the Vertex AI RAG managed service.

It creates a document corpus with a fixed embedding model, imports documents
from Cloud Storage with a fixed chunking policy, and runs bounded retrieval
queries against the corpus. Embedding, chunking, indexing, and similarity
search are all performed by the managed backend.

Configuration is layered: defaults, then a YAML file (--config,
RAGPIPE_CONFIG, ./ragpipe.yaml, ~/.ragpipe/config.yaml), then RAGPIPE_*
environment variables. Authentication uses application default credentials
(gcloud auth application-default login).

Required settings:
  RAGPIPE_PROJECT    Google Cloud project ID
  RAGPIPE_LOCATION   Vertex AI region (default: us-central1)

See 'ragpipe --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, path, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			slog.SetDefault(log)
			cmd.SetContext(logging.NewContext(cmd.Context(), log))
			if path != "" {
				log.Debug("config: loaded YAML config", slog.String("path", path))
			}

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ./ragpipe.yaml)")

	root.AddCommand(
		NewBuildCmd(),
		NewQueryCmd(),
		NewCorporaCmd(),
		NewFilesCmd(),
		NewVersionCmd(),
	)

	return root
}
