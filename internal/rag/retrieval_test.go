// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag_test

import (
	"context"
	"testing"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/google/go-cmp/cmp"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/ragpipe/ragpipe/internal/rag"
)

func newLocalRetrievalService(topK int32, threshold float64) *rag.RetrievalService {
	corpora := rag.NewCorpusService(nil, "test-project", "us-central1", rag.DefaultRetryPolicy, nil)
	return rag.NewRetrievalService(nil, corpora, "test-project", "us-central1", topK, threshold, rag.DefaultRetryPolicy, nil)
}

// fakeResolver resolves every reference to a fixed resource name.
type fakeResolver struct {
	name string
	refs []string
}

func (f *fakeResolver) ResolveCorpus(ctx context.Context, ref string) (string, error) {
	f.refs = append(f.refs, ref)
	return f.name, nil
}

// fakeRetriever records the request and returns a canned response.
type fakeRetriever struct {
	req  *aiplatformpb.RetrieveContextsRequest
	resp *aiplatformpb.RetrieveContextsResponse
	err  error
}

func (f *fakeRetriever) RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest, opts ...gax.CallOption) (*aiplatformpb.RetrieveContextsResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestRetrievalService_Query(t *testing.T) {
	const resolved = "projects/test-project/locations/us-central1/ragCorpora/123"

	resolver := &fakeResolver{name: resolved}
	retriever := &fakeRetriever{
		resp: &aiplatformpb.RetrieveContextsResponse{
			Contexts: &aiplatformpb.RagContexts{
				Contexts: []*aiplatformpb.RagContexts_Context{
					{
						Text:      "Records are retained for seven years.",
						SourceUri: "gs://bucket/policy.pdf",
						Score:     proto.Float64(0.91),
					},
					{
						Text:      "Retention applies to all document classes.",
						SourceUri: "gs://bucket/handbook.pdf",
						Score:     proto.Float64(0.84),
					},
				},
			},
		},
	}
	svc := rag.NewRetrievalService(retriever, resolver, "test-project", "us-central1", 5, 0, rag.DefaultRetryPolicy, nil)

	passages, err := svc.Query(t.Context(), "Docs", "What is the retention policy?", 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Docs"}, resolver.refs); diff != "" {
		t.Errorf("resolved references mismatch (-want +got):\n%s", diff)
	}

	req := retriever.req
	if req == nil {
		t.Fatal("Query() never reached the backend")
	}
	if got, want := req.GetParent(), "projects/test-project/locations/us-central1"; got != want {
		t.Errorf("request parent = %q, want %q", got, want)
	}
	if got, want := req.GetQuery().GetText(), "What is the retention policy?"; got != want {
		t.Errorf("request query text = %q, want %q", got, want)
	}
	if got, want := req.GetQuery().GetSimilarityTopK(), int32(3); got != want {
		t.Errorf("request similarity top k = %d, want %d", got, want)
	}
	resources := req.GetVertexRagStore().GetRagResources()
	if len(resources) != 1 || resources[0].GetRagCorpus() != resolved {
		t.Errorf("request resources = %v, want the single resolved corpus %q", resources, resolved)
	}

	want := []*rag.Passage{
		{
			Text:      "Records are retained for seven years.",
			SourceURI: "gs://bucket/policy.pdf",
			Score:     0.91,
		},
		{
			Text:      "Retention applies to all document classes.",
			SourceURI: "gs://bucket/handbook.pdf",
			Score:     0.84,
		},
	}
	if diff := cmp.Diff(want, passages); diff != "" {
		t.Errorf("Query() passages mismatch (-want +got):\n%s", diff)
	}
	if len(passages) > 3 {
		t.Errorf("Query() returned %d passages, want at most 3", len(passages))
	}
}

func TestRetrievalService_Query_BackendError(t *testing.T) {
	resolver := &fakeResolver{name: "projects/p/locations/l/ragCorpora/1"}
	retriever := &fakeRetriever{err: status.Error(codes.InvalidArgument, "bad query")}
	svc := rag.NewRetrievalService(retriever, resolver, "test-project", "us-central1", 5, 0, rag.DefaultRetryPolicy, nil)

	_, err := svc.Query(t.Context(), "Docs", "x", 3)
	if !rag.IsRemoteService(err) {
		t.Errorf("Query() error = %v, want a remote service error", err)
	}
}

func TestRetrievalService_Query_UnsetCorpus(t *testing.T) {
	svc := newLocalRetrievalService(5, 0)

	_, err := svc.Query(t.Context(), "", "What is X?", 5)
	if !rag.IsConfiguration(err) {
		t.Errorf("Query() with unset corpus error = %v, want a configuration error", err)
	}
}

func TestRetrievalService_RetrieveContexts_NoResources(t *testing.T) {
	svc := newLocalRetrievalService(5, 0)

	_, err := svc.RetrieveContexts(t.Context(), &rag.RetrievalQuery{Text: "x", SimilarityTopK: 5}, nil)
	if !rag.IsConfiguration(err) {
		t.Errorf("RetrieveContexts() with no resources error = %v, want a configuration error", err)
	}
}

func TestRetrievalService_Store(t *testing.T) {
	const corpusName = "projects/p/locations/l/ragCorpora/123"

	t.Run("defaults", func(t *testing.T) {
		svc := newLocalRetrievalService(7, 0.6)

		store := svc.Store(corpusName)
		if len(store.RAGResources) != 1 || store.RAGResources[0].RAGCorpus != corpusName {
			t.Errorf("Store() resources = %+v, want the single corpus %q", store.RAGResources, corpusName)
		}
		if store.SimilarityTopK == nil || *store.SimilarityTopK != 7 {
			t.Errorf("Store() SimilarityTopK = %v, want 7", store.SimilarityTopK)
		}
		if store.VectorDistanceThreshold == nil || *store.VectorDistanceThreshold != 0.6 {
			t.Errorf("Store() VectorDistanceThreshold = %v, want 0.6", store.VectorDistanceThreshold)
		}
	})

	t.Run("no_threshold", func(t *testing.T) {
		svc := newLocalRetrievalService(5, 0)

		store := svc.Store(corpusName)
		if store.VectorDistanceThreshold != nil {
			t.Errorf("Store() VectorDistanceThreshold = %v, want nil when disabled", store.VectorDistanceThreshold)
		}
	})

	t.Run("zero_topk_falls_back", func(t *testing.T) {
		svc := newLocalRetrievalService(0, 0)

		store := svc.Store(corpusName)
		if store.SimilarityTopK == nil || *store.SimilarityTopK != rag.DefaultTopK {
			t.Errorf("Store() SimilarityTopK = %v, want the default %d", store.SimilarityTopK, rag.DefaultTopK)
		}
	})
}
