// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"time"
)

// DefaultEmbeddingModel is the publisher model used for corpora created
// without an explicit embedding model override.
const DefaultEmbeddingModel = "publishers/google/models/text-embedding-005"

// Default chunking policy applied to imported documents.
const (
	DefaultChunkSize    int32 = 512
	DefaultChunkOverlap int32 = 64
)

// DefaultTopK is the number of passages retrieved when the caller does not
// bound the query explicitly.
const DefaultTopK int32 = 5

// CorpusState represents the state of a corpus.
type CorpusState string

const (
	CorpusStateUnspecified CorpusState = "CORPUS_STATE_UNSPECIFIED"
	CorpusStateActive      CorpusState = "ACTIVE"
	CorpusStateError       CorpusState = "ERROR"
)

// FileState represents the state of an imported file.
type FileState string

const (
	FileStateUnspecified FileState = "FILE_STATE_UNSPECIFIED"
	FileStateActive      FileState = "ACTIVE"
	FileStateError       FileState = "ERROR"
)

// EmbeddingModelConfig selects the embedding model backing a corpus.
type EmbeddingModelConfig struct {
	// PublisherModel is the publisher model resource name.
	// Example: "publishers/google/models/text-embedding-005"
	PublisherModel string `json:"publisher_model,omitempty"`
}

// VectorDbConfig is the backend configuration for a corpus. ragpipe always
// uses the Google-managed vector database; only the embedding model varies.
type VectorDbConfig struct {
	// RagEmbeddingModelConfig is the embedding model configuration.
	RagEmbeddingModelConfig *EmbeddingModelConfig `json:"rag_embedding_model_config,omitempty"`
}

// Corpus is a named collection of ingested, embedded documents managed by
// the Vertex AI RAG backend.
type Corpus struct {
	// Name is the service-assigned resource name.
	// Format: projects/{project}/locations/{location}/ragCorpora/{rag_corpus}
	Name string `json:"name,omitempty"`

	// DisplayName is the human-chosen display name. The backend does not
	// guarantee uniqueness.
	DisplayName string `json:"display_name,omitempty"`

	// Description is the corpus description.
	Description string `json:"description,omitempty"`

	// BackendConfig is the vector database configuration.
	BackendConfig *VectorDbConfig `json:"backend_config,omitempty"`

	// CreateTime is when the corpus was created.
	CreateTime *time.Time `json:"create_time,omitempty"`

	// UpdateTime is when the corpus was last updated.
	UpdateTime *time.Time `json:"update_time,omitempty"`

	// State is the current corpus state.
	State CorpusState `json:"state,omitempty"`
}

// File is a document imported into a corpus.
type File struct {
	// Name is the resource name.
	// Format: projects/{project}/locations/{location}/ragCorpora/{rag_corpus}/ragFiles/{rag_file}
	Name string `json:"name,omitempty"`

	// DisplayName is the human-readable display name.
	DisplayName string `json:"display_name,omitempty"`

	// Description is the file description.
	Description string `json:"description,omitempty"`

	// SourceURIs are the object storage URIs the file was imported from.
	SourceURIs []string `json:"source_uris,omitempty"`

	// SizeBytes is the file size in bytes.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// State is the current file state.
	State FileState `json:"state,omitempty"`

	// CreateTime is when the file was imported.
	CreateTime *time.Time `json:"create_time,omitempty"`

	// UpdateTime is when the file was last updated.
	UpdateTime *time.Time `json:"update_time,omitempty"`
}

// ChunkingConfig is the fixed chunking policy applied to all documents in a
// single import batch.
type ChunkingConfig struct {
	// ChunkSize is the number of tokens per chunk.
	ChunkSize int32 `json:"chunk_size,omitempty"`

	// ChunkOverlap is the number of tokens shared between consecutive chunks.
	ChunkOverlap int32 `json:"chunk_overlap,omitempty"`
}

// ImportSummary reports the outcome of a batch import. Skipped and failed
// files are data, not errors; the backend deduplicates and drops unsupported
// formats on its own.
type ImportSummary struct {
	// ImportedCount is the number of files successfully imported.
	ImportedCount int64 `json:"imported_count"`

	// SkippedCount is the number of files the backend skipped
	// (duplicates, unsupported formats).
	SkippedCount int64 `json:"skipped_count"`

	// FailedCount is the number of files that failed to import.
	FailedCount int64 `json:"failed_count"`
}

// RetrievalQuery is a similarity query against one or more corpora.
type RetrievalQuery struct {
	// Text is the query text.
	Text string `json:"text,omitempty"`

	// SimilarityTopK bounds the number of passages returned.
	SimilarityTopK int32 `json:"similarity_top_k,omitempty"`

	// VectorDistanceThreshold drops passages beyond the given distance.
	// Zero disables the threshold.
	VectorDistanceThreshold float64 `json:"vector_distance_threshold,omitempty"`
}

// Passage is a single retrieved chunk. Ordering and scores are backend
// passthrough; no local re-ranking is applied.
type Passage struct {
	// Text is the chunk content.
	Text string `json:"text,omitempty"`

	// SourceURI is the object storage URI of the source document.
	SourceURI string `json:"source_uri,omitempty"`

	// SourceDisplayName is the display name of the source file, when known.
	SourceDisplayName string `json:"source_display_name,omitempty"`

	// Score is the relevance score as reported by the backend.
	Score float64 `json:"score,omitempty"`
}
