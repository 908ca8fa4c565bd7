// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/iterator"
)

// CorpusService handles corpus lifecycle operations and resolution of
// human-readable corpus references to resource names.
type CorpusService struct {
	client    *aiplatform.VertexRagDataClient
	projectID string
	location  string
	retry     RetryPolicy
	logger    *slog.Logger
}

// NewCorpusService creates a new CorpusService.
func NewCorpusService(client *aiplatform.VertexRagDataClient, projectID, location string, retry RetryPolicy, logger *slog.Logger) *CorpusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorpusService{
		client:    client,
		projectID: projectID,
		location:  location,
		retry:     retry,
		logger:    logger,
	}
}

// CreateCorpus creates a corpus with the given backend configuration and
// waits for the long-running operation to complete. Display-name uniqueness
// is backend policy and not enforced here.
func (s *CorpusService) CreateCorpus(ctx context.Context, displayName, description string, backendConfig *VectorDbConfig) (*Corpus, error) {
	if displayName == "" {
		return nil, NewConfigurationError("display name", "must not be empty")
	}

	s.logger.InfoContext(ctx, "Creating RAG corpus",
		slog.String("parent", s.parent()),
		slog.String("display_name", displayName),
	)

	pbReq := &aiplatformpb.CreateRagCorpusRequest{
		Parent: s.parent(),
		RagCorpus: &aiplatformpb.RagCorpus{
			DisplayName:       displayName,
			Description:       description,
			RagVectorDbConfig: vectorDbConfigToPb(backendConfig),
		},
	}

	var pbCorpus *aiplatformpb.RagCorpus
	err := s.retry.call(ctx, s.logger, "create corpus", func(ctx context.Context) error {
		op, err := s.client.CreateRagCorpus(ctx, pbReq)
		if err != nil {
			return err
		}
		pbCorpus, err = op.Wait(ctx)
		return err
	})
	if err != nil {
		return nil, NewRemoteServiceError("create corpus", err)
	}

	corpus := corpusFromPb(pbCorpus)
	s.logger.InfoContext(ctx, "RAG corpus created",
		slog.String("name", corpus.Name),
		slog.String("display_name", corpus.DisplayName),
	)

	return corpus, nil
}

// ListCorpora lists all corpora visible in the project and location,
// following pagination to the end.
func (s *CorpusService) ListCorpora(ctx context.Context) ([]*Corpus, error) {
	s.logger.InfoContext(ctx, "Listing RAG corpora",
		slog.String("parent", s.parent()),
	)

	it := s.client.ListRagCorpora(ctx, &aiplatformpb.ListRagCorporaRequest{
		Parent: s.parent(),
	})

	var corpora []*Corpus
	for {
		pbCorpus, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, NewRemoteServiceError("list corpora", err)
		}
		corpora = append(corpora, corpusFromPb(pbCorpus))
	}

	s.logger.InfoContext(ctx, "Listed RAG corpora",
		slog.Int("count", len(corpora)),
	)

	return corpora, nil
}

// GetCorpus retrieves a corpus by resource name.
func (s *CorpusService) GetCorpus(ctx context.Context, name string) (*Corpus, error) {
	pbCorpus, err := s.client.GetRagCorpus(ctx, &aiplatformpb.GetRagCorpusRequest{
		Name: name,
	})
	if err != nil {
		return nil, NewRemoteServiceError("get corpus", err)
	}
	return corpusFromPb(pbCorpus), nil
}

// DeleteCorpus deletes a corpus by resource name. With force set, contained
// files are deleted as well.
func (s *CorpusService) DeleteCorpus(ctx context.Context, name string, force bool) error {
	s.logger.InfoContext(ctx, "Deleting RAG corpus",
		slog.String("name", name),
		slog.Bool("force", force),
	)

	op, err := s.client.DeleteRagCorpus(ctx, &aiplatformpb.DeleteRagCorpusRequest{
		Name:  name,
		Force: force,
	})
	if err != nil {
		return NewRemoteServiceError("delete corpus", err)
	}
	if err := op.Wait(ctx); err != nil {
		return NewRemoteServiceError("delete corpus", err)
	}

	return nil
}

// ResolveCorpus maps a corpus reference to a resource name. A reference
// already shaped as a fully-qualified resource name passes through unchanged
// without a listing call; anything else is treated as a display name and
// resolved by a linear scan over the visible corpora, first exact match wins.
func (s *CorpusService) ResolveCorpus(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", NewConfigurationError("corpus", "no corpus reference supplied")
	}
	if IsCorpusResourceName(ref) {
		return ref, nil
	}

	s.logger.InfoContext(ctx, "Resolving corpus by display name",
		slog.String("display_name", ref),
	)

	corpora, err := s.ListCorpora(ctx)
	if err != nil {
		return "", err
	}

	name, matches := findByDisplayName(corpora, ref)
	if matches == 0 {
		return "", NewCorpusNotFoundError(ref)
	}
	if matches > 1 {
		s.logger.WarnContext(ctx, "Multiple corpora share display name, using first match",
			slog.String("display_name", ref),
			slog.Int("matches", matches),
			slog.String("resolved", name),
		)
	}

	s.logger.InfoContext(ctx, "Resolved corpus",
		slog.String("display_name", ref),
		slog.String("name", name),
	)

	return name, nil
}

// IsCorpusResourceName reports whether s is shaped like a fully-qualified
// corpus resource name:
// projects/{project}/locations/{location}/ragCorpora/{rag_corpus}
func IsCorpusResourceName(s string) bool {
	return strings.HasPrefix(s, "projects/") && strings.Contains(s, "/ragCorpora/")
}

// findByDisplayName returns the resource name of the first corpus whose
// display name matches exactly, along with the total number of matches.
func findByDisplayName(corpora []*Corpus, displayName string) (string, int) {
	var name string
	matches := 0
	for _, c := range corpora {
		if c.DisplayName != displayName {
			continue
		}
		if matches == 0 {
			name = c.Name
		}
		matches++
	}
	return name, matches
}

// parent returns the location-scoped parent resource name.
func (s *CorpusService) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", s.projectID, s.location)
}

// vectorDbConfigToPb converts a VectorDbConfig to protobuf. ragpipe always
// targets the managed vector database.
func vectorDbConfigToPb(config *VectorDbConfig) *aiplatformpb.RagVectorDbConfig {
	if config == nil {
		return nil
	}

	pbConfig := &aiplatformpb.RagVectorDbConfig{
		VectorDb: &aiplatformpb.RagVectorDbConfig_RagManagedDb_{
			RagManagedDb: &aiplatformpb.RagVectorDbConfig_RagManagedDb{},
		},
	}

	if mc := config.RagEmbeddingModelConfig; mc != nil && mc.PublisherModel != "" {
		pbConfig.RagEmbeddingModelConfig = &aiplatformpb.RagEmbeddingModelConfig{
			ModelConfig: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint_{
				VertexPredictionEndpoint: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint{
					Endpoint: mc.PublisherModel,
				},
			},
		}
	}

	return pbConfig
}

// corpusFromPb converts a protobuf RagCorpus to a Corpus.
func corpusFromPb(pb *aiplatformpb.RagCorpus) *Corpus {
	if pb == nil {
		return nil
	}

	corpus := &Corpus{
		Name:        pb.GetName(),
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
	}

	if pb.GetCreateTime() != nil {
		createTime := pb.GetCreateTime().AsTime()
		corpus.CreateTime = &createTime
	}
	if pb.GetUpdateTime() != nil {
		updateTime := pb.GetUpdateTime().AsTime()
		corpus.UpdateTime = &updateTime
	}

	switch pb.GetCorpusStatus().GetState() {
	case aiplatformpb.CorpusStatus_INITIALIZED:
		corpus.State = CorpusStateActive
	case aiplatformpb.CorpusStatus_ERROR:
		corpus.State = CorpusStateError
	default:
		corpus.State = CorpusStateUnspecified
	}

	if ep := pb.GetRagVectorDbConfig().GetRagEmbeddingModelConfig().GetVertexPredictionEndpoint(); ep != nil {
		corpus.BackendConfig = &VectorDbConfig{
			RagEmbeddingModelConfig: &EmbeddingModelConfig{
				PublisherModel: ep.GetEndpoint(),
			},
		}
	}

	return corpus
}
