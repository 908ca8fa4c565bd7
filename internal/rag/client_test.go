// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag_test

import (
	"os"
	"testing"

	"github.com/ragpipe/ragpipe/internal/rag"
)

const (
	envGoogleCloudProjectID = "GOOGLE_CLOUD_PROJECT_ID"
	envGoogleCloudLocation  = "GOOGLE_CLOUD_LOCATION"
)

func TestNewService_Validation(t *testing.T) {
	t.Run("empty_project", func(t *testing.T) {
		_, err := rag.NewService(t.Context(), "", "us-central1")
		if !rag.IsConfiguration(err) {
			t.Errorf("NewService() with empty project error = %v, want a configuration error", err)
		}
	})

	t.Run("empty_location", func(t *testing.T) {
		_, err := rag.NewService(t.Context(), "test-project", "")
		if !rag.IsConfiguration(err) {
			t.Errorf("NewService() with empty location error = %v, want a configuration error", err)
		}
	})
}

func TestNewService(t *testing.T) {
	t.Skip("requires Google Cloud credentials")

	ctx := t.Context()
	projectID := getRequiredEnv(t, envGoogleCloudProjectID)
	location := getRequiredEnv(t, envGoogleCloudLocation)

	svc, err := rag.NewService(ctx, projectID, location)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	defer svc.Close()

	if got := svc.ProjectID(); got != projectID {
		t.Errorf("ProjectID() = %v, want %v", got, projectID)
	}
	if got := svc.Location(); got != location {
		t.Errorf("Location() = %v, want %v", got, location)
	}
}

func TestService_BuildAndQuery(t *testing.T) {
	t.Skip("requires Google Cloud credentials and creates real resources")

	ctx := t.Context()
	projectID := getRequiredEnv(t, envGoogleCloudProjectID)
	location := getRequiredEnv(t, envGoogleCloudLocation)

	svc, err := rag.NewService(ctx, projectID, location)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	defer svc.Close()

	corpus, err := svc.CreateCorpus(ctx, "ragpipe-test-corpus", "created by tests")
	if err != nil {
		t.Fatalf("CreateCorpus() error = %v", err)
	}
	defer func() {
		if err := svc.DeleteCorpus(ctx, corpus.Name, true); err != nil {
			t.Logf("failed to clean up corpus %s: %v", corpus.Name, err)
		}
	}()

	if corpus.Name == "" {
		t.Fatal("CreateCorpus() returned a corpus with an empty resource name")
	}

	resolved, err := svc.ResolveCorpus(ctx, "ragpipe-test-corpus")
	if err != nil {
		t.Fatalf("ResolveCorpus() error = %v", err)
	}
	if resolved != corpus.Name {
		t.Errorf("ResolveCorpus() = %v, want %v", resolved, corpus.Name)
	}

	passages, err := svc.Query(ctx, corpus.Name, "anything", 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(passages) > 3 {
		t.Errorf("Query() returned %d passages, want at most 3", len(passages))
	}
}

func getRequiredEnv(t *testing.T, key string) string {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("environment variable %s not set", key)
	}
	return v
}
