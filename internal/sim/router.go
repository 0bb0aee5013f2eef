package sim

import (
	"net/http"
	"strings"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

// handlerFunc answers one matched route. id is the value bound by the
// pattern's {id} segment, empty for literal-only patterns.
type handlerFunc func(e *Engine, id string, body map[string]any, query map[string]string) (dispatch.Document, error)

// route is one entry of the engine's dispatch table.
type route struct {
	method  string
	pattern string
	handler handlerFunc
}

// routes is evaluated top to bottom; the first match wins and anything
// left over falls through to NotImplemented. Patterns are literal path
// segments plus at most one {id} capturing segment.
var routes = []route{
	{http.MethodGet, "/health", func(e *Engine, _ string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.Health(), nil
	}},
	{http.MethodPost, "/encryption/generate-key-pair", func(e *Engine, _ string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.GenerateKeyPair(), nil
	}},
	{http.MethodPost, "/encryption/encrypt-symmetric", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.EncryptDocument(body), nil
	}},
	{http.MethodPost, "/encryption/encrypt-profile", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.EncryptDocument(body), nil
	}},

	{http.MethodGet, "/profiles", func(e *Engine, _ string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.ListProfiles(), nil
	}},
	{http.MethodPost, "/profiles", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return map[string]any{"profile_id": e.CreateProfile(body)}, nil
	}},
	{http.MethodGet, "/profiles/{id}", func(e *Engine, id string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return orNil(e.GetProfile(id))
	}},
	{http.MethodPut, "/profiles/{id}", func(e *Engine, id string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return orNil(e.UpdateProfile(id, body))
	}},
	{http.MethodDelete, "/profiles/{id}", func(e *Engine, id string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		if err := e.DeleteProfile(id); err != nil {
			return nil, err
		}
		return map[string]any{"profile_id": id, "status": "deleted"}, nil
	}},

	{http.MethodGet, "/groups", func(e *Engine, _ string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.ListGroups(), nil
	}},
	{http.MethodPost, "/groups", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return map[string]any{"group_id": e.CreateGroup(body)}, nil
	}},
	{http.MethodGet, "/groups/{id}", func(e *Engine, id string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		return orNil(e.GetGroup(id))
	}},
	{http.MethodPut, "/groups/{id}", func(e *Engine, id string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return orNil(e.UpdateGroup(id, body))
	}},
	{http.MethodDelete, "/groups/{id}", func(e *Engine, id string, _ map[string]any, _ map[string]string) (dispatch.Document, error) {
		if err := e.DeleteGroup(id); err != nil {
			return nil, err
		}
		return map[string]any{"group_id": id, "status": "deleted"}, nil
	}},

	{http.MethodGet, "/matching/profile/{id}/matches", func(e *Engine, id string, _ map[string]any, query map[string]string) (dispatch.Document, error) {
		return e.Matches(id, parseLimit(query, defaultMatchLimit)), nil
	}},
	{http.MethodGet, "/matching/profile/{id}/groups", func(e *Engine, id string, _ map[string]any, query map[string]string) (dispatch.Document, error) {
		return e.GroupMatches(id, parseLimit(query, defaultMatchLimit)), nil
	}},
	{http.MethodGet, "/matching/profile/{id}/recommendations", func(e *Engine, id string, _ map[string]any, query map[string]string) (dispatch.Document, error) {
		return e.Recommendations(id, parseLimit(query, defaultMatchLimit)), nil
	}},
	{http.MethodPost, "/matching/groups", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		id, members := e.FormGroup(body)
		return map[string]any{"group_id": id, "members": members}, nil
	}},

	{http.MethodPost, "/privacy/detect-pii", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.DetectPII(body), nil
	}},
	{http.MethodPost, "/privacy/mask-pii", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.MaskPII(body), nil
	}},
	{http.MethodPost, "/privacy/anonymize-text", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.AnonymizeText(body), nil
	}},
	{http.MethodPost, "/privacy/create-anonymous-profile", func(e *Engine, _ string, body map[string]any, _ map[string]string) (dispatch.Document, error) {
		return e.CreateAnonymousProfile(body), nil
	}},
}

// Route answers one logical call against the route table. Unknown
// endpoint/method combinations return NotImplemented.
func (e *Engine) Route(endpoint, method string, body map[string]any, query map[string]string) (dispatch.Document, error) {
	if body == nil {
		body = map[string]any{}
	}
	if query == nil {
		query = map[string]string{}
	}

	for _, r := range routes {
		if r.method != method {
			continue
		}
		id, ok := matchPattern(r.pattern, endpoint)
		if !ok {
			continue
		}
		return r.handler(e, id, body, query)
	}

	return nil, dispatch.Errorf(dispatch.KindNotImplemented,
		"Endpoint %s with method %s not implemented in simulation", endpoint, method)
}

// matchPattern matches path against a pattern of literal segments plus at
// most one {id} segment, returning the bound id. Trailing slashes are not
// significant, so "/profiles" matches "/profiles/".
func matchPattern(pattern, path string) (string, bool) {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)
	if len(patternParts) != len(pathParts) {
		return "", false
	}

	id := ""
	for i, part := range patternParts {
		if part == "{id}" {
			if pathParts[i] == "" {
				return "", false
			}
			id = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return "", false
		}
	}
	return id, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// orNil adapts a (value, error) pair to the Document return shape without
// leaking a typed nil on the error path.
func orNil[T any](v T, err error) (dispatch.Document, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
