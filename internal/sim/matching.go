package sim

import (
	"fmt"
	"sort"
)

const defaultMatchLimit = 10

// Matches computes scored candidates for a profile. The requesting profile
// is excluded from the pool; every other profile gets a score drawn
// uniformly from [0.5, 1.0) so demo results read as plausible matches.
// Results are sorted by score descending with ties broken by insertion
// order, then truncated to limit.
//
// The requesting id is not checked for existence; unknown ids simply get
// the full candidate pool, matching the lenient demo backend.
func (e *Engine) Matches(profileID string, limit int) []MatchResult {
	// Score draws mutate the rng, so take the write lock.
	e.mu.Lock()
	defer e.mu.Unlock()

	matches := make([]MatchResult, 0, len(e.profileOrder))
	for _, id := range e.profileOrder {
		if id == profileID {
			continue
		}
		matches = append(matches, MatchResult{
			Profile: copyProfile(e.profiles[id]),
			Score:   e.score(),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// GroupMatches ranks all groups for a profile with the same scoring kernel.
func (e *Engine) GroupMatches(profileID string, limit int) []GroupMatch {
	e.mu.Lock()
	defer e.mu.Unlock()

	matches := make([]GroupMatch, 0, len(e.groupOrder))
	for _, id := range e.groupOrder {
		matches = append(matches, GroupMatch{
			Group: copyGroup(e.groups[id]),
			Score: e.score(),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Recommendations suggests groups the profile is not already a member of.
func (e *Engine) Recommendations(profileID string, limit int) []Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()

	recs := make([]Recommendation, 0, len(e.groupOrder))
	for _, id := range e.groupOrder {
		g := e.groups[id]
		if containsID(g.Members, profileID) {
			continue
		}
		recs = append(recs, Recommendation{
			Group:  copyGroup(g),
			Score:  e.score(),
			Reason: fmt.Sprintf("Shared focus on %s", groupFocus(g)),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// FormGroup creates a group from a formation request: explicit member ids
// are used as given, otherwise up to size members are sampled from the
// profile store.
func (e *Engine) FormGroup(body map[string]any) (string, []string) {
	members := stringSliceField(body, "member_ids")
	if len(members) == 0 {
		size := 3
		if v, ok := body["size"].(float64); ok && int(v) > 0 {
			size = int(v)
		}
		e.mu.Lock()
		members = e.sample(e.profileOrder, size)
		e.mu.Unlock()
	}

	req := map[string]any{
		"name":        stringField(body, "name", ""),
		"description": stringField(body, "description", "Group formed by matching request."),
		"members":     members,
		"tags":        stringSliceField(body, "tags"),
	}
	id := e.CreateGroup(req)
	return id, members
}

// score draws one match score, uniform over [0.5, 1.0). Caller holds the
// write lock.
func (e *Engine) score() float64 {
	return 0.5 + e.rng.Float64()*0.5
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func groupFocus(g *Group) string {
	if v, ok := g.Preferences["focus"].(string); ok && v != "" {
		return v
	}
	return "similar interests"
}
