// Package api exposes the simulation engine over HTTP so the demo
// frontend (or the backend client in tests) can target a local backend
// with the live service's endpoint surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/universa-labs/universa-go/internal/dispatch"
	"github.com/universa-labs/universa-go/internal/sim"
)

const maxBodySize = 1 << 20 // 1MB

// NewHandler builds the HTTP surface over the given engine.
func NewHandler(engine *sim.Engine) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, engine.Health())
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, engine.ListProfiles())
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBody(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"profile_id": engine.CreateProfile(body)})
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			p, err := engine.GetProfile(chi.URLParam(req, "id"))
			writeResult(w, p, err)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBody(w, req)
			if !ok {
				return
			}
			p, err := engine.UpdateProfile(chi.URLParam(req, "id"), body)
			writeResult(w, p, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if err := engine.DeleteProfile(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"profile_id": id, "status": "deleted"})
		})
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, engine.ListGroups())
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBody(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"group_id": engine.CreateGroup(body)})
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			g, err := engine.GetGroup(chi.URLParam(req, "id"))
			writeResult(w, g, err)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBody(w, req)
			if !ok {
				return
			}
			g, err := engine.UpdateGroup(chi.URLParam(req, "id"), body)
			writeResult(w, g, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if err := engine.DeleteGroup(id); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"group_id": id, "status": "deleted"})
		})
	})

	r.Route("/matching", func(r chi.Router) {
		r.Get("/profile/{id}/matches", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, engine.Matches(chi.URLParam(req, "id"), queryLimit(req)))
		})
		r.Get("/profile/{id}/groups", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, engine.GroupMatches(chi.URLParam(req, "id"), queryLimit(req)))
		})
		r.Get("/profile/{id}/recommendations", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, engine.Recommendations(chi.URLParam(req, "id"), queryLimit(req)))
		})
		r.Post("/groups", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBody(w, req)
			if !ok {
				return
			}
			id, members := engine.FormGroup(body)
			writeJSON(w, http.StatusOK, map[string]any{"group_id": id, "members": members})
		})
	})

	r.Route("/privacy", func(r chi.Router) {
		r.Post("/detect-pii", bodyHandler(engine.DetectPII))
		r.Post("/mask-pii", bodyHandler(engine.MaskPII))
		r.Post("/anonymize-text", bodyHandler(engine.AnonymizeText))
		r.Post("/create-anonymous-profile", bodyHandler(engine.CreateAnonymousProfile))
	})

	r.Route("/encryption", func(r chi.Router) {
		r.Post("/generate-key-pair", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, engine.GenerateKeyPair())
		})
		r.Post("/encrypt-symmetric", bodyHandler(engine.EncryptDocument))
		r.Post("/encrypt-profile", bodyHandler(engine.EncryptDocument))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "Endpoint " + req.URL.Path + " with method " + req.Method + " not implemented",
		})
	})

	return r
}

// bodyHandler adapts an engine method that maps a request body to a
// response document.
func bodyHandler(fn func(map[string]any) map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, ok := decodeBody(w, req)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, fn(body))
	}
}

func decodeBody(w http.ResponseWriter, req *http.Request) (map[string]any, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodySize)
	defer req.Body.Close()

	body := map[string]any{}
	if req.ContentLength == 0 {
		return body, true
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return nil, false
	}
	return body, true
}

func queryLimit(req *http.Request) int {
	limit := 10
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return limit
}

func writeResult(w http.ResponseWriter, doc any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// writeError maps dispatch error kinds onto HTTP statuses, keeping the
// {"error": message} document shape the frontend expects.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kind, ok := dispatch.KindOf(err); ok {
		switch kind {
		case dispatch.KindNotFound:
			status = http.StatusNotFound
		case dispatch.KindNotImplemented:
			status = http.StatusNotImplemented
		}
	}

	doc := map[string]any{"error": err.Error()}
	var de *dispatch.Error
	if errors.As(err, &de) {
		doc = map[string]any{"error": de.Message}
	}
	writeJSON(w, status, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
