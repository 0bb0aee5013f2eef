package sim

import (
	"net/http"
	"testing"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

func TestRoute_Health(t *testing.T) {
	e := testEngine()

	doc, err := e.Route("/health", http.MethodGet, nil, nil)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	m := doc.(map[string]any)
	if m["status"] != "healthy" || m["mode"] != "simulated" {
		t.Errorf("doc = %v", m)
	}
}

func TestRoute_TrailingSlash(t *testing.T) {
	e := testEngine()

	for _, endpoint := range []string{"/profiles", "/profiles/"} {
		doc, err := e.Route(endpoint, http.MethodGet, nil, nil)
		if err != nil {
			t.Fatalf("Route(%q) error = %v", endpoint, err)
		}
		if profiles := doc.([]Profile); len(profiles) != 5 {
			t.Errorf("Route(%q) = %d profiles, want 5", endpoint, len(profiles))
		}
	}
}

func TestRoute_IDBinding(t *testing.T) {
	e := testEngine()

	doc, err := e.Route("/profiles/profile_2", http.MethodGet, nil, nil)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if p := doc.(Profile); p.ID != "profile_2" {
		t.Errorf("ID = %q, want profile_2", p.ID)
	}

	doc, err = e.Route("/matching/profile/profile_2/matches", http.MethodGet, nil, map[string]string{"limit": "2"})
	if err != nil {
		t.Fatalf("Route(matches) error = %v", err)
	}
	matches := doc.([]MatchResult)
	if len(matches) != 2 {
		t.Errorf("got %d matches, want limit 2", len(matches))
	}
	for _, m := range matches {
		if m.Profile.ID == "profile_2" {
			t.Error("requester in match list")
		}
	}
}

func TestRoute_CreateDelete(t *testing.T) {
	e := testEngine()

	doc, err := e.Route("/profiles/", http.MethodPost, map[string]any{"name": "Routed"}, nil)
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	id := doc.(map[string]any)["profile_id"].(string)

	doc, err = e.Route("/profiles/"+id, http.MethodDelete, nil, nil)
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	m := doc.(map[string]any)
	if m["status"] != "deleted" || m["profile_id"] != id {
		t.Errorf("delete doc = %v", m)
	}

	_, err = e.Route("/profiles/"+id, http.MethodGet, nil, nil)
	if kind, ok := dispatch.KindOf(err); !ok || kind != dispatch.KindNotFound {
		t.Errorf("get after delete = %v, want not found", err)
	}
}

func TestRoute_NotImplemented(t *testing.T) {
	e := testEngine()

	tests := []struct {
		endpoint string
		method   string
	}{
		{"/unknown/endpoint", http.MethodGet},
		{"/health", http.MethodPost},
		{"/profiles/profile_1/extra", http.MethodGet},
		{"/matching/groups", http.MethodGet},
	}
	for _, tt := range tests {
		_, err := e.Route(tt.endpoint, tt.method, nil, nil)
		kind, ok := dispatch.KindOf(err)
		if !ok || kind != dispatch.KindNotImplemented {
			t.Errorf("Route(%s %s) = %v, want not implemented", tt.method, tt.endpoint, err)
		}
	}
}

func TestRoute_BadLimitFallsBackToDefault(t *testing.T) {
	e := testEngine()

	doc, err := e.Route("/matching/profile/profile_1/matches", http.MethodGet, nil, map[string]string{"limit": "bogus"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if matches := doc.([]MatchResult); len(matches) != 4 {
		t.Errorf("got %d matches, want 4 (default limit covers the pool)", len(matches))
	}
}

func TestRoute_FormGroup(t *testing.T) {
	e := testEngine()

	doc, err := e.Route("/matching/groups", http.MethodPost, map[string]any{
		"member_ids": []any{"profile_1", "profile_2"},
	}, nil)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	m := doc.(map[string]any)
	if _, ok := m["group_id"].(string); !ok {
		t.Fatalf("doc = %v, missing group_id", m)
	}
	if members := m["members"].([]string); len(members) != 2 {
		t.Errorf("members = %v", members)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		wantID  string
		wantOK  bool
	}{
		{"/profiles", "/profiles", "", true},
		{"/profiles", "/profiles/", "", true},
		{"/profiles/{id}", "/profiles/profile_1", "profile_1", true},
		{"/profiles/{id}", "/profiles", "", false},
		{"/profiles/{id}", "/groups/profile_1", "", false},
		{"/matching/profile/{id}/matches", "/matching/profile/p9/matches", "p9", true},
		{"/matching/profile/{id}/matches", "/matching/profile/p9/groups", "", false},
	}
	for _, tt := range tests {
		id, ok := matchPattern(tt.pattern, tt.path)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("matchPattern(%q, %q) = (%q, %v), want (%q, %v)",
				tt.pattern, tt.path, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
