// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the corpus build flow: create the corpus,
// give the backend a moment to finish provisioning, then import the
// document batch. The flow is linear and synchronous; failures are logged
// and returned to the caller, which decides whether to terminate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragpipe/ragpipe/internal/rag"
)

// CorpusBuilder is the slice of the RAG service the pipeline needs.
// Implemented by [*rag.Service].
type CorpusBuilder interface {
	CreateCorpus(ctx context.Context, displayName, description string) (*rag.Corpus, error)
	ImportFromGCS(ctx context.Context, corpusName string, uris []string, chunking *rag.ChunkingConfig) (*rag.ImportSummary, error)
}

// Config holds the pipeline parameters.
type Config struct {
	// DisplayName is the display name for the new corpus.
	DisplayName string

	// Description is the corpus description.
	Description string

	// GCSURIs are the documents to import, as Cloud Storage URIs.
	GCSURIs []string

	// Chunking is the chunking policy for the import batch. Nil selects
	// the service defaults.
	Chunking *rag.ChunkingConfig

	// SettleDelay is the pause between corpus creation and import. Zero
	// skips the pause.
	SettleDelay time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Corpus is the created corpus.
	Corpus *rag.Corpus

	// Summary reports the import counts.
	Summary *rag.ImportSummary
}

// Pipeline orchestrates the create → settle → import flow.
type Pipeline struct {
	builder CorpusBuilder
	cfg     *Config
	logger  *slog.Logger
}

// New constructs a Pipeline from the provided builder and config.
func New(builder CorpusBuilder, cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	if builder == nil {
		return nil, fmt.Errorf("pipeline: builder must not be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config must not be nil")
	}
	if cfg.DisplayName == "" {
		return nil, fmt.Errorf("pipeline: corpus display name must not be empty")
	}
	if len(cfg.GCSURIs) == 0 {
		return nil, fmt.Errorf("pipeline: at least one document URI is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		builder: builder,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run executes the pipeline and returns the created corpus together with
// the import summary. The first error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	corpus, err := p.builder.CreateCorpus(ctx, p.cfg.DisplayName, p.cfg.Description)
	if err != nil {
		p.logger.ErrorContext(ctx, "Corpus creation failed",
			slog.String("display_name", p.cfg.DisplayName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// The corpus is usable immediately after the create LRO completes, but
	// imports issued in the same breath occasionally race provisioning.
	if p.cfg.SettleDelay > 0 {
		p.logger.InfoContext(ctx, "Waiting before import",
			slog.Duration("settle_delay", p.cfg.SettleDelay),
		)
		select {
		case <-time.After(p.cfg.SettleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	summary, err := p.builder.ImportFromGCS(ctx, corpus.Name, p.cfg.GCSURIs, p.cfg.Chunking)
	if err != nil {
		p.logger.ErrorContext(ctx, "Document import failed",
			slog.String("corpus", corpus.Name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	p.logger.InfoContext(ctx, "Corpus build finished",
		slog.String("corpus", corpus.Name),
		slog.Int64("imported", summary.ImportedCount),
		slog.Int64("skipped", summary.SkippedCount),
	)

	return &Result{Corpus: corpus, Summary: summary}, nil
}
