// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// Service is the connection object for all Vertex AI RAG operations. It
// replaces ambient process-wide session state: every Service carries its own
// project, location, and client connections, so constructing a second one is
// always safe.
type Service struct {
	corpora   *CorpusService
	files     *FileService
	retrieval *RetrievalService

	ragClient     *aiplatform.VertexRagClient
	ragDataClient *aiplatform.VertexRagDataClient

	projectID      string
	location       string
	embeddingModel string
	topK           int32
	threshold      float64
	retry          RetryPolicy
	logger         *slog.Logger
}

// ServiceOption is a functional option for configuring the Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRetryPolicy overrides the backoff applied to backend calls.
func WithRetryPolicy(policy RetryPolicy) ServiceOption {
	return func(s *Service) {
		s.retry = policy
	}
}

// WithEmbeddingModel overrides the publisher model used for new corpora.
func WithEmbeddingModel(model string) ServiceOption {
	return func(s *Service) {
		s.embeddingModel = model
	}
}

// WithTopK sets the default passage count for queries.
func WithTopK(topK int32) ServiceOption {
	return func(s *Service) {
		s.topK = topK
	}
}

// WithVectorDistanceThreshold sets the distance cutoff for retrieval.
func WithVectorDistanceThreshold(threshold float64) ServiceOption {
	return func(s *Service) {
		s.threshold = threshold
	}
}

// NewService creates a Vertex AI RAG service bound to a project and
// location. It detects application default credentials and dials the
// regional Vertex endpoint.
func NewService(ctx context.Context, projectID, location string, opts ...ServiceOption) (*Service, error) {
	if projectID == "" {
		return nil, NewConfigurationError("project", "must not be empty")
	}
	if location == "" {
		return nil, NewConfigurationError("location", "must not be empty")
	}

	s := &Service{
		projectID:      projectID,
		location:       location,
		embeddingModel: DefaultEmbeddingModel,
		topK:           DefaultTopK,
		retry:          DefaultRetryPolicy,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{
			"https://www.googleapis.com/auth/cloud-platform",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect default credentials: %w", err)
	}

	clientOpts := []option.ClientOption{
		option.WithAuthCredentials(creds),
		// Vertex AI RAG endpoints are regional.
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)),
	}

	s.ragClient, err = aiplatform.NewVertexRagClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex RAG client: %w", err)
	}

	s.ragDataClient, err = aiplatform.NewVertexRagDataClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to create Vertex RAG data client: %w", err),
			s.ragClient.Close(),
		)
	}

	s.corpora = NewCorpusService(s.ragDataClient, projectID, location, s.retry, s.logger)
	s.files = NewFileService(s.ragDataClient, s.retry, s.logger)
	s.retrieval = NewRetrievalService(s.ragClient, s.corpora, projectID, location, s.topK, s.threshold, s.retry, s.logger)

	s.logger.InfoContext(ctx, "Vertex AI RAG service initialized",
		slog.String("project_id", projectID),
		slog.String("location", location),
	)

	return s, nil
}

// Close releases the underlying client connections.
func (s *Service) Close() error {
	return errors.Join(s.ragClient.Close(), s.ragDataClient.Close())
}

// CreateCorpus creates a corpus using the service's embedding model.
func (s *Service) CreateCorpus(ctx context.Context, displayName, description string) (*Corpus, error) {
	return s.corpora.CreateCorpus(ctx, displayName, description, &VectorDbConfig{
		RagEmbeddingModelConfig: &EmbeddingModelConfig{
			PublisherModel: s.embeddingModel,
		},
	})
}

// ListCorpora lists all corpora visible in the project and location.
func (s *Service) ListCorpora(ctx context.Context) ([]*Corpus, error) {
	return s.corpora.ListCorpora(ctx)
}

// GetCorpus retrieves a corpus by resource name.
func (s *Service) GetCorpus(ctx context.Context, name string) (*Corpus, error) {
	return s.corpora.GetCorpus(ctx, name)
}

// DeleteCorpus deletes a corpus by resource name.
func (s *Service) DeleteCorpus(ctx context.Context, name string, force bool) error {
	return s.corpora.DeleteCorpus(ctx, name, force)
}

// ResolveCorpus maps a display name or resource name to a resource name.
func (s *Service) ResolveCorpus(ctx context.Context, ref string) (string, error) {
	return s.corpora.ResolveCorpus(ctx, ref)
}

// ImportFromGCS imports documents from Cloud Storage into a corpus.
func (s *Service) ImportFromGCS(ctx context.Context, corpusName string, uris []string, chunking *ChunkingConfig) (*ImportSummary, error) {
	return s.files.ImportFromGCS(ctx, corpusName, uris, chunking)
}

// ListFiles lists all files imported into a corpus.
func (s *Service) ListFiles(ctx context.Context, corpusName string) ([]*File, error) {
	return s.files.ListFiles(ctx, corpusName)
}

// Query resolves the corpus reference and retrieves at most topK passages.
func (s *Service) Query(ctx context.Context, corpusRef, text string, topK int32) ([]*Passage, error) {
	return s.retrieval.Query(ctx, corpusRef, text, topK)
}

// Store builds a genai VertexRAGStore bound to the given resolved corpus.
func (s *Service) Store(corpusName string) *genai.VertexRAGStore {
	return s.retrieval.Store(corpusName)
}

// ProjectID returns the project the service is bound to.
func (s *Service) ProjectID() string {
	return s.projectID
}

// Location returns the location the service is bound to.
func (s *Service) Location() string {
	return s.location
}
