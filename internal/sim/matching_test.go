package sim

import (
	"testing"
)

func TestMatches_ExcludesRequester(t *testing.T) {
	e := testEngine()

	matches := e.Matches("profile_1", defaultMatchLimit)
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4 (5 seeded minus requester)", len(matches))
	}
	for _, m := range matches {
		if m.Profile.ID == "profile_1" {
			t.Error("requester appears in its own match list")
		}
	}
}

func TestMatches_ScoreRangeAndOrder(t *testing.T) {
	e := testEngine()

	matches := e.Matches("profile_1", defaultMatchLimit)
	for i, m := range matches {
		if m.Score < 0.5 || m.Score >= 1.0 {
			t.Errorf("matches[%d].Score = %v, want in [0.5, 1.0)", i, m.Score)
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Errorf("matches[%d..%d] out of order: %v < %v", i-1, i, matches[i-1].Score, m.Score)
		}
	}
}

func TestMatches_LimitTruncatesAfterSort(t *testing.T) {
	e := testEngine()

	full := e.Matches("profile_1", defaultMatchLimit)
	if len(full) != 4 {
		t.Fatalf("full list = %d entries", len(full))
	}

	// A fresh engine with the same seed draws the same scores, so the
	// limited list must be the head of the full ranking.
	e2 := testEngine()
	limited := e2.Matches("profile_1", 2)
	if len(limited) != 2 {
		t.Fatalf("got %d matches, want 2", len(limited))
	}
	for i := range limited {
		if limited[i].Profile.ID != full[i].Profile.ID {
			t.Errorf("limited[%d] = %s, want %s (top of full ranking)", i, limited[i].Profile.ID, full[i].Profile.ID)
		}
	}
}

func TestMatches_UnknownRequesterIsLenient(t *testing.T) {
	e := testEngine()

	matches := e.Matches("profile_ghost", defaultMatchLimit)
	if len(matches) != 5 {
		t.Errorf("got %d matches for unknown requester, want full pool of 5", len(matches))
	}
}

func TestMatches_ZeroLimit(t *testing.T) {
	e := testEngine()
	if got := e.Matches("profile_1", 0); len(got) != 0 {
		t.Errorf("got %d matches with limit 0, want 0", len(got))
	}
}

func TestGroupMatches(t *testing.T) {
	e := testEngine()

	matches := e.GroupMatches("profile_1", defaultMatchLimit)
	if len(matches) != 3 {
		t.Fatalf("got %d group matches, want 3", len(matches))
	}
	for i, m := range matches {
		if m.Score < 0.5 || m.Score >= 1.0 {
			t.Errorf("score %v out of range", m.Score)
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Errorf("group matches out of order at %d", i)
		}
	}
}

func TestRecommendations_SkipMemberGroups(t *testing.T) {
	e := testEngine()

	// Make membership deterministic: profile_1 is in group_1 only.
	if _, err := e.UpdateGroup("group_1", map[string]any{"members": []any{"profile_1"}}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"group_2", "group_3"} {
		if _, err := e.UpdateGroup(id, map[string]any{"members": []any{"profile_2"}}); err != nil {
			t.Fatal(err)
		}
	}

	recs := e.Recommendations("profile_1", defaultMatchLimit)
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Group.ID == "group_1" {
			t.Error("recommended a group the profile already belongs to")
		}
		if r.Reason == "" {
			t.Errorf("recommendation for %s has empty reason", r.Group.ID)
		}
	}
}

func TestFormGroup_ExplicitMembers(t *testing.T) {
	e := testEngine()

	id, members := e.FormGroup(map[string]any{
		"name":       "Study Circle",
		"member_ids": []any{"profile_1", "profile_3"},
	})
	if len(members) != 2 {
		t.Fatalf("members = %v, want the explicit pair", members)
	}

	g, err := e.GetGroup(id)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}
	if g.Name != "Study Circle" {
		t.Errorf("Name = %q", g.Name)
	}
	if len(g.Members) != 2 || g.Members[0] != "profile_1" || g.Members[1] != "profile_3" {
		t.Errorf("Members = %v", g.Members)
	}
}

func TestFormGroup_SampledMembers(t *testing.T) {
	e := testEngine()

	_, members := e.FormGroup(map[string]any{})
	if len(members) != 3 {
		t.Fatalf("sampled %d members, want default size 3", len(members))
	}
	seen := map[string]bool{}
	for _, m := range members {
		if seen[m] {
			t.Errorf("member %s sampled twice", m)
		}
		seen[m] = true
		if _, err := e.GetProfile(m); err != nil {
			t.Errorf("sampled member %s is not a stored profile", m)
		}
	}

	_, members = e.FormGroup(map[string]any{"size": float64(2)})
	if len(members) != 2 {
		t.Errorf("sampled %d members with size 2", len(members))
	}
}
