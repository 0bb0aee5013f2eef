package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/universa-labs/universa-go/internal/api"
	"github.com/universa-labs/universa-go/internal/backend"
	"github.com/universa-labs/universa-go/internal/dispatch"
	"github.com/universa-labs/universa-go/internal/sim"
)

// Both serve surfaces hang off the session's one engine: a write issued
// through the dispatcher (the MCP tool path) must be visible to reads
// on the HTTP surface.
func TestServeSurfacesShareStore(t *testing.T) {
	engine := sim.New()
	client := backend.New("http://127.0.0.1:1", time.Second, time.Second)
	sess := &session{
		dispatcher: dispatch.New(dispatch.NewModeState(dispatch.Simulated), client, engine, nil),
		engine:     engine,
	}

	handler := api.NewHandler(sess.engine)

	doc, err := sess.dispatcher.Request(context.Background(), "/profiles/", http.MethodPost,
		map[string]any{"name": "Shared"}, nil)
	if err != nil {
		t.Fatalf("create via dispatcher error = %v", err)
	}
	id := doc.(map[string]any)["profile_id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/profiles/"+id, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /profiles/%s = %d, want 200", id, rec.Code)
	}

	var p map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if p["name"] != "Shared" {
		t.Errorf("profile = %v, dispatcher write not visible over HTTP", p)
	}
}
