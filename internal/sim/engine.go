package sim

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

// Engine is the in-memory stand-in for the matching backend. It answers the
// same endpoint surface over a private store of profiles and groups, seeded
// with a small synthetic dataset and mutable for the life of the process.
//
// Writers (and match scoring, which draws from the rng) take the write
// lock; plain reads share the read lock.
type Engine struct {
	mu           sync.RWMutex
	profiles     map[string]*Profile
	profileOrder []string
	groups       map[string]*Group
	groupOrder   []string
	rng          *rand.Rand
}

// New creates an Engine seeded with demo data.
func New() *Engine {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates an Engine using the given randomness source
// (for deterministic tests).
func NewWithRand(rng *rand.Rand) *Engine {
	e := &Engine{
		profiles: make(map[string]*Profile),
		groups:   make(map[string]*Group),
		rng:      rng,
	}
	e.seed()
	return e
}

// newID returns an id like "profile_1a2b3c4d".
func newID(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])[:8]
}

// Health returns the fixed healthy status document, tagged as simulated.
func (e *Engine) Health() dispatch.Document {
	return map[string]any{"status": "healthy", "mode": "simulated"}
}

// GenerateKeyPair returns a freshly generated placeholder key pair. Each
// call yields distinct tokens.
func (e *Engine) GenerateKeyPair() dispatch.Document {
	pub := uuid.New()
	priv := uuid.New()
	return map[string]any{
		"public_key":  "sim_public_key_" + hex.EncodeToString(pub[:])[:8],
		"private_key": "sim_private_key_" + hex.EncodeToString(priv[:])[:16],
	}
}

// ListProfiles returns all profiles in insertion order.
func (e *Engine) ListProfiles() []Profile {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Profile, 0, len(e.profileOrder))
	for _, id := range e.profileOrder {
		out = append(out, copyProfile(e.profiles[id]))
	}
	return out
}

// GetProfile returns the profile with the given id.
func (e *Engine) GetProfile(id string) (Profile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.profiles[id]
	if !ok {
		return Profile{}, dispatch.Errorf(dispatch.KindNotFound, "Profile not found")
	}
	return copyProfile(p), nil
}

// CreateProfile stores a profile built from body, applying defaults for
// omitted fields, and returns the new id.
func (e *Engine) CreateProfile(body map[string]any) string {
	id := newID("profile")
	p := &Profile{
		ID:          id,
		Name:        stringField(body, "name", "User "+id),
		Description: stringField(body, "description", "No description provided."),
		Preferences: mapField(body, "preferences"),
		Tags:        stringSliceField(body, "tags"),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.profiles[id] = p
	e.profileOrder = append(e.profileOrder, id)
	return id
}

// UpdateProfile replaces the named fields of an existing profile. Update
// semantics are whole-set replacement: a preferences or tags value in the
// body swaps out the previous set entirely.
func (e *Engine) UpdateProfile(id string, body map[string]any) (Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.profiles[id]
	if !ok {
		return Profile{}, dispatch.Errorf(dispatch.KindNotFound, "Profile not found")
	}
	if v, ok := body["name"].(string); ok {
		p.Name = v
	}
	if v, ok := body["description"].(string); ok {
		p.Description = v
	}
	if _, ok := body["preferences"]; ok {
		p.Preferences = mapField(body, "preferences")
	}
	if _, ok := body["tags"]; ok {
		p.Tags = stringSliceField(body, "tags")
	}
	return copyProfile(p), nil
}

// DeleteProfile removes the profile with the given id.
func (e *Engine) DeleteProfile(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.profiles[id]; !ok {
		return dispatch.Errorf(dispatch.KindNotFound, "Profile not found")
	}
	delete(e.profiles, id)
	e.profileOrder = removeID(e.profileOrder, id)
	return nil
}

// ListGroups returns all groups in insertion order.
func (e *Engine) ListGroups() []Group {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Group, 0, len(e.groupOrder))
	for _, id := range e.groupOrder {
		out = append(out, copyGroup(e.groups[id]))
	}
	return out
}

// GetGroup returns the group with the given id.
func (e *Engine) GetGroup(id string) (Group, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g, ok := e.groups[id]
	if !ok {
		return Group{}, dispatch.Errorf(dispatch.KindNotFound, "Group not found")
	}
	return copyGroup(g), nil
}

// CreateGroup stores a group built from body and returns the new id.
// Member ids are taken as given, without an existence check against the
// profile store.
func (e *Engine) CreateGroup(body map[string]any) string {
	id := newID("group")
	g := &Group{
		ID:          id,
		Name:        stringField(body, "name", "Group "+id),
		Description: stringField(body, "description", "No description provided."),
		Preferences: mapField(body, "preferences"),
		Tags:        stringSliceField(body, "tags"),
		Members:     stringSliceField(body, "members"),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.groups[id] = g
	e.groupOrder = append(e.groupOrder, id)
	return id
}

// UpdateGroup replaces the named fields of an existing group.
func (e *Engine) UpdateGroup(id string, body map[string]any) (Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[id]
	if !ok {
		return Group{}, dispatch.Errorf(dispatch.KindNotFound, "Group not found")
	}
	if v, ok := body["name"].(string); ok {
		g.Name = v
	}
	if v, ok := body["description"].(string); ok {
		g.Description = v
	}
	if _, ok := body["preferences"]; ok {
		g.Preferences = mapField(body, "preferences")
	}
	if _, ok := body["tags"]; ok {
		g.Tags = stringSliceField(body, "tags")
	}
	if _, ok := body["members"]; ok {
		g.Members = stringSliceField(body, "members")
	}
	return copyGroup(g), nil
}

// DeleteGroup removes the group with the given id.
func (e *Engine) DeleteGroup(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.groups[id]; !ok {
		return dispatch.Errorf(dispatch.KindNotFound, "Group not found")
	}
	delete(e.groups, id)
	e.groupOrder = removeID(e.groupOrder, id)
	return nil
}

// --- field extraction helpers ---

func stringField(body map[string]any, key, fallback string) string {
	if v, ok := body[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func mapField(body map[string]any, key string) map[string]any {
	if v, ok := body[key].(map[string]any); ok {
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	}
	return map[string]any{}
}

// stringSliceField reads a list of strings from body. JSON-decoded bodies
// carry []any; in-process callers may pass []string directly.
func stringSliceField(body map[string]any, key string) []string {
	switch v := body[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			default:
				out = append(out, fmt.Sprintf("%v", s))
			}
		}
		return out
	}
	return []string{}
}

func parseLimit(query map[string]string, fallback int) int {
	v, ok := query["limit"]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// copyProfile and copyGroup deep-copy list and map fields. Empty slices
// stay non-nil so documents marshal as [] rather than null, the same
// shape the live backend serves.
func copyProfile(p *Profile) Profile {
	out := *p
	out.Preferences = make(map[string]any, len(p.Preferences))
	for k, v := range p.Preferences {
		out.Preferences[k] = v
	}
	out.Tags = make([]string, len(p.Tags))
	copy(out.Tags, p.Tags)
	return out
}

func copyGroup(g *Group) Group {
	out := *g
	if g.Preferences != nil {
		out.Preferences = make(map[string]any, len(g.Preferences))
		for k, v := range g.Preferences {
			out.Preferences[k] = v
		}
	}
	out.Tags = make([]string, len(g.Tags))
	copy(out.Tags, g.Tags)
	out.Members = make([]string, len(g.Members))
	copy(out.Members, g.Members)
	return out
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
