// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/genai"
)

// ContextRetriever is the slice of the Vertex RAG API a retrieval service
// submits queries through. Satisfied by the aiplatform VertexRagClient.
type ContextRetriever interface {
	RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest, opts ...gax.CallOption) (*aiplatformpb.RetrieveContextsResponse, error)
}

// CorpusResolver maps corpus references to resource names.
// Satisfied by [*CorpusService].
type CorpusResolver interface {
	ResolveCorpus(ctx context.Context, ref string) (string, error)
}

// RetrievalService issues similarity queries against corpora and normalizes
// the responses into passages.
type RetrievalService struct {
	client    ContextRetriever
	corpora   CorpusResolver
	projectID string
	location  string
	topK      int32
	threshold float64
	retry     RetryPolicy
	logger    *slog.Logger
}

// NewRetrievalService creates a new RetrievalService. The resolver is
// used to resolve display-name references before each query.
func NewRetrievalService(client ContextRetriever, corpora CorpusResolver, projectID, location string, topK int32, threshold float64, retry RetryPolicy, logger *slog.Logger) *RetrievalService {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		client:    client,
		corpora:   corpora,
		projectID: projectID,
		location:  location,
		topK:      topK,
		threshold: threshold,
		retry:     retry,
		logger:    logger,
	}
}

// Query resolves the corpus reference, retrieves at most topK passages for
// the query text, and returns them in backend order. A topK of zero or less
// falls back to the service default. The corpus reference is re-resolved on
// every call; no state is retained between queries.
func (s *RetrievalService) Query(ctx context.Context, corpusRef, text string, topK int32) ([]*Passage, error) {
	corpusName, err := s.corpora.ResolveCorpus(ctx, corpusRef)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.topK
	}

	query := &RetrievalQuery{
		Text:                    text,
		SimilarityTopK:          topK,
		VectorDistanceThreshold: s.threshold,
	}
	return s.RetrieveContexts(ctx, query, []string{corpusName})
}

// RetrieveContexts retrieves passages for a query from one or more resolved
// corpus resource names. Every resource must already be fully qualified;
// resolution belongs to the caller.
func (s *RetrievalService) RetrieveContexts(ctx context.Context, query *RetrievalQuery, resources []string) ([]*Passage, error) {
	if len(resources) == 0 {
		return nil, NewConfigurationError("resources", "no corpus resource names supplied")
	}

	s.logger.InfoContext(ctx, "Retrieving contexts",
		slog.String("query", query.Text),
		slog.Int("similarity_top_k", int(query.SimilarityTopK)),
		slog.Int("resources", len(resources)),
	)

	var pbResources []*aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource
	for _, resource := range resources {
		pbResources = append(pbResources, &aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource{
			RagCorpus: resource,
		})
	}

	store := &aiplatformpb.RetrieveContextsRequest_VertexRagStore{
		RagResources: pbResources,
	}
	if query.VectorDistanceThreshold > 0 {
		store.VectorDistanceThreshold = &query.VectorDistanceThreshold
	}

	pbReq := &aiplatformpb.RetrieveContextsRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", s.projectID, s.location),
		Query: &aiplatformpb.RagQuery{
			Query: &aiplatformpb.RagQuery_Text{
				Text: query.Text,
			},
			SimilarityTopK: query.SimilarityTopK,
		},
		DataSource: &aiplatformpb.RetrieveContextsRequest_VertexRagStore_{
			VertexRagStore: store,
		},
	}

	var pbResp *aiplatformpb.RetrieveContextsResponse
	err := s.retry.call(ctx, s.logger, "retrieve contexts", func(ctx context.Context) error {
		var err error
		pbResp, err = s.client.RetrieveContexts(ctx, pbReq)
		return err
	})
	if err != nil {
		return nil, NewRemoteServiceError("retrieve contexts", err)
	}

	passages := passagesFromPb(pbResp.GetContexts())

	s.logger.InfoContext(ctx, "Contexts retrieved",
		slog.Int("passages", len(passages)),
	)

	return passages, nil
}

// Store builds a genai VertexRAGStore bound to the given resolved corpus and
// the service retrieval defaults, for handing the corpus to a downstream
// generation stack as a retrieval tool.
func (s *RetrievalService) Store(corpusName string) *genai.VertexRAGStore {
	store := &genai.VertexRAGStore{
		RAGResources: []*genai.VertexRAGStoreRAGResource{
			{
				RAGCorpus: corpusName,
			},
		},
		SimilarityTopK: genai.Ptr(s.topK),
	}
	if s.threshold > 0 {
		store.VectorDistanceThreshold = genai.Ptr(s.threshold)
	}
	return store
}

// passagesFromPb converts backend contexts into passages, preserving the
// backend's relevance-descending order and scores untouched.
func passagesFromPb(pb *aiplatformpb.RagContexts) []*Passage {
	var passages []*Passage
	for _, c := range pb.GetContexts() {
		passages = append(passages, &Passage{
			Text:              c.GetText(),
			SourceURI:         c.GetSourceUri(),
			SourceDisplayName: c.GetSourceDisplayName(),
			Score:             c.GetScore(),
		})
	}
	return passages
}
