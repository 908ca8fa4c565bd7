// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ragpipe/ragpipe/internal/pipeline"
	"github.com/ragpipe/ragpipe/internal/rag"
)

// fakeBuilder records pipeline calls and returns canned results.
type fakeBuilder struct {
	createCalls int
	importCalls int

	corpus    *rag.Corpus
	createErr error

	importedCorpus string
	importedURIs   []string
	summary        *rag.ImportSummary
	importErr      error
}

func (f *fakeBuilder) CreateCorpus(ctx context.Context, displayName, description string) (*rag.Corpus, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.corpus, nil
}

func (f *fakeBuilder) ImportFromGCS(ctx context.Context, corpusName string, uris []string, chunking *rag.ChunkingConfig) (*rag.ImportSummary, error) {
	f.importCalls++
	f.importedCorpus = corpusName
	f.importedURIs = uris
	if f.importErr != nil {
		return nil, f.importErr
	}
	return f.summary, nil
}

func TestNew_Validation(t *testing.T) {
	builder := &fakeBuilder{}
	cfg := &pipeline.Config{
		DisplayName: "docs",
		GCSURIs:     []string{"gs://bucket/doc.pdf"},
	}

	tests := []struct {
		name    string
		builder pipeline.CorpusBuilder
		cfg     *pipeline.Config
		wantErr bool
	}{
		{
			name:    "valid",
			builder: builder,
			cfg:     cfg,
			wantErr: false,
		},
		{
			name:    "nil_builder",
			builder: nil,
			cfg:     cfg,
			wantErr: true,
		},
		{
			name:    "nil_config",
			builder: builder,
			cfg:     nil,
			wantErr: true,
		},
		{
			name:    "empty_display_name",
			builder: builder,
			cfg: &pipeline.Config{
				GCSURIs: []string{"gs://bucket/doc.pdf"},
			},
			wantErr: true,
		},
		{
			name:    "no_uris",
			builder: builder,
			cfg: &pipeline.Config{
				DisplayName: "docs",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.New(tt.builder, tt.cfg, nil)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPipeline_Run(t *testing.T) {
	builder := &fakeBuilder{
		corpus: &rag.Corpus{
			Name:        "projects/p/locations/l/ragCorpora/1",
			DisplayName: "docs",
		},
		summary: &rag.ImportSummary{ImportedCount: 3, SkippedCount: 1},
	}
	uris := []string{"gs://bucket/a.pdf", "gs://bucket/b.pdf"}

	p, err := pipeline.New(builder, &pipeline.Config{
		DisplayName: "docs",
		GCSURIs:     uris,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := p.Run(t.Context())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if builder.createCalls != 1 {
		t.Errorf("CreateCorpus called %d times, want 1", builder.createCalls)
	}
	if builder.importCalls != 1 {
		t.Errorf("ImportFromGCS called %d times, want 1", builder.importCalls)
	}
	if builder.importedCorpus != builder.corpus.Name {
		t.Errorf("import targeted corpus %q, want %q", builder.importedCorpus, builder.corpus.Name)
	}
	if diff := cmp.Diff(uris, builder.importedURIs); diff != "" {
		t.Errorf("import URIs mismatch (-want +got):\n%s", diff)
	}
	if result.Corpus != builder.corpus {
		t.Errorf("Run() corpus = %v, want %v", result.Corpus, builder.corpus)
	}
	if result.Summary.ImportedCount != 3 {
		t.Errorf("Run() imported count = %d, want 3", result.Summary.ImportedCount)
	}
}

func TestPipeline_Run_CreateError(t *testing.T) {
	wantErr := errors.New("create failed")
	builder := &fakeBuilder{createErr: wantErr}

	p, err := pipeline.New(builder, &pipeline.Config{
		DisplayName: "docs",
		GCSURIs:     []string{"gs://bucket/doc.pdf"},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Run(t.Context()); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
	if builder.importCalls != 0 {
		t.Errorf("ImportFromGCS called %d times after create failure, want 0", builder.importCalls)
	}
}

func TestPipeline_Run_ImportError(t *testing.T) {
	wantErr := errors.New("import failed")
	builder := &fakeBuilder{
		corpus:    &rag.Corpus{Name: "projects/p/locations/l/ragCorpora/1"},
		importErr: wantErr,
	}

	p, err := pipeline.New(builder, &pipeline.Config{
		DisplayName: "docs",
		GCSURIs:     []string{"gs://bucket/doc.pdf"},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Run(t.Context()); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestPipeline_Run_CanceledDuringSettle(t *testing.T) {
	builder := &fakeBuilder{
		corpus:  &rag.Corpus{Name: "projects/p/locations/l/ragCorpora/1"},
		summary: &rag.ImportSummary{},
	}

	p, err := pipeline.New(builder, &pipeline.Config{
		DisplayName: "docs",
		GCSURIs:     []string{"gs://bucket/doc.pdf"},
		SettleDelay: time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
	if builder.importCalls != 0 {
		t.Errorf("ImportFromGCS called %d times after cancellation, want 0", builder.importCalls)
	}
}
