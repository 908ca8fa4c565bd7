// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package rag is a thin client for the Vertex AI RAG managed service:
// corpus creation, batch document import, and bounded retrieval queries.
// Embedding, chunking, indexing, and similarity scoring all happen in the
// backend; this package only packages parameterized API calls with retry,
// logging, and a stable result shape.
//
// The package is organized into a [Service] facade over three sub-services:
//
//   - [CorpusService]: corpus lifecycle and display-name resolution
//   - [FileService]: batch import from Cloud Storage and file inspection
//   - [RetrievalService]: similarity queries normalized into passages
//
// # Usage
//
// Create a service bound to a project and location:
//
//	svc, err := rag.NewService(ctx, "my-project", "us-central1")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer svc.Close()
//
// Build a corpus and import documents:
//
//	corpus, err := svc.CreateCorpus(ctx, "Docs", "product documentation")
//	summary, err := svc.ImportFromGCS(ctx, corpus.Name, []string{"gs://bucket/doc.pdf"}, nil)
//
// Query it by display name or resource name:
//
//	passages, err := svc.Query(ctx, "Docs", "What is X?", 5)
//
// # Resolution
//
// Corpus references are resolved on every query: a fully-qualified resource
// name passes through untouched, anything else is matched against corpus
// display names, first exact match wins. Display names are not unique on the
// backend; duplicates are logged and the first match is used.
//
// # Errors
//
// Failures are classified as [ErrConfiguration] (missing or invalid local
// input, never retried), [ErrCorpusNotFound] (display name matched nothing),
// or [ErrRemoteService] (backend failure after the retry budget is
// exhausted). Transient backend errors are retried with bounded exponential
// backoff before surfacing.
package rag
