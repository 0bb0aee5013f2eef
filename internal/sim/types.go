package sim

// Profile is a member profile as the backend serves it. Preferences are an
// arbitrary key→value mapping and stay opaque to the dispatcher.
type Profile struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Preferences map[string]any `json:"preferences"`
	Tags        []string       `json:"tags"`
}

// Group is a collection of profiles. Members hold profile ids that are NOT
// checked against the profile store: the demo backend is lenient here and
// the simulation preserves that.
type Group struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Tags        []string       `json:"tags"`
	Members     []string       `json:"members"`
}

// MatchResult pairs a candidate profile with its score in [0, 1]. Produced
// on demand, never stored.
type MatchResult struct {
	Profile Profile `json:"profile"`
	Score   float64 `json:"score"`
}

// GroupMatch pairs a group with its score for a requesting profile.
type GroupMatch struct {
	Group Group   `json:"group"`
	Score float64 `json:"score"`
}

// Recommendation is a scored group suggestion with a display reason.
type Recommendation struct {
	Group  Group   `json:"group"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
