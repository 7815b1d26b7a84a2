package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"reelpost/internal/catalog"
	"reelpost/internal/logging"
	"reelpost/internal/services"
	"reelpost/internal/testsupport"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title>Neck Massager</title></head>
<body>
<article>
<h1>Neck Massager</h1>
<p>This portable neck massager uses heated nodes to relieve tension after a
long day. The battery lasts a full week of daily sessions and it charges
over USB-C. Reviewers consistently call out how quiet the motor is.</p>
</article>
</body>
</html>`

func TestExtractRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	enricher := NewEnricher(testsupport.NewConfig(t), logging.NewNop())
	enricher.backoff = 0

	description, err := enricher.Extract(context.Background(), server.URL+"/product/1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(description, "heated nodes") {
		t.Fatalf("description %q is missing article text", description)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d requests, want 3", got)
	}
}

func TestExtractGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	enricher := NewEnricher(testsupport.NewConfig(t), logging.NewNop())
	enricher.backoff = 0

	_, err := enricher.Extract(context.Background(), server.URL+"/product/1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("Extract error = %v, want %v", err, services.ErrTransient)
	}
}

func TestEnrichAllSkipsFilledDescriptions(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	enricher := NewEnricher(testsupport.NewConfig(t), logging.NewNop())
	enricher.backoff = 0

	products := []*catalog.Product{
		{ProductKey: "A", Description: "already described", ProductURL: server.URL + "/a"},
		{ProductKey: "B", ProductURL: server.URL + "/b"},
	}
	enricher.EnrichAll(context.Background(), products)

	if products[0].Description != "already described" {
		t.Fatalf("existing description overwritten: %q", products[0].Description)
	}
	if !strings.Contains(products[1].Description, "neck massager") {
		t.Fatalf("empty description not filled: %q", products[1].Description)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d requests, want 1", got)
	}
}
