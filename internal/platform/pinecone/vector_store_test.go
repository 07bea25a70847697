package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

func TestVectorStoreQualifiesNamespaceAndParsesMatches(t *testing.T) {
	var gotNS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "k" {
			t.Errorf("missing api key header")
		}
		var req QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotNS = req.Namespace
		_, _ = w.Write([]byte(`{"matches":[{"id":"a","score":0.9},{"id":"","score":0.1},{"id":"b","score":0.5}]}`))
	}))
	defer srv.Close()

	cfg := Config{APIKey: "k", IndexHost: srv.URL, NamespacePrefix: "aura"}
	pc, err := New(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vs, err := NewVectorStore(context.Background(), logger.Nop(), pc, cfg)
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	ids, err := vs.QueryIDs(context.Background(), "owner-1", []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("QueryIDs: %v", err)
	}
	if gotNS != "aura:owner-1" {
		t.Fatalf("namespace: got %q", gotNS)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids: %v", ids)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{APIKey: "k"}).Enabled() {
		t.Fatalf("expected disabled without index")
	}
	if !(Config{APIKey: "k", IndexName: "idx"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}
