package sim

import "fmt"

// Seed attribute pools, mirroring the demo dataset the real service ships
// with. Values are sampled at construction so every run looks a little
// different while staying schema-valid.
var (
	seedInterests      = []string{"AI", "blockchain", "privacy", "web3", "science", "art", "music", "sports"}
	seedLocations      = []string{"Remote", "New York", "San Francisco", "London", "Tokyo"}
	seedAvailabilities = []string{"Full-time", "Part-time", "Weekends"}
	seedProfileTags    = []string{"developer", "researcher", "designer", "mentor", "student"}
	seedFocuses        = []string{"research", "development", "education", "networking"}
	seedFrequencies    = []string{"weekly", "monthly", "as needed"}
	seedGroupTags      = []string{"tech", "science", "ai", "blockchain", "privacy"}
)

const (
	seedProfileCount = 5
	seedGroupCount   = 3
)

// seed populates the store with the fixed-size synthetic dataset.
// Called once from the constructor; no locking needed.
func (e *Engine) seed() {
	for i := 1; i <= seedProfileCount; i++ {
		id := fmt.Sprintf("profile_%d", i)
		p := &Profile{
			ID:          id,
			Name:        fmt.Sprintf("Demo User %d", i),
			Description: fmt.Sprintf("This is a demo profile #%d for testing purposes.", i),
			Preferences: map[string]any{
				"interests":    e.sample(seedInterests, 3),
				"location":     e.pick(seedLocations),
				"availability": e.pick(seedAvailabilities),
			},
			Tags: e.sample(seedProfileTags, 2),
		}
		e.profiles[id] = p
		e.profileOrder = append(e.profileOrder, id)
	}

	for i := 1; i <= seedGroupCount; i++ {
		id := fmt.Sprintf("group_%d", i)
		g := &Group{
			ID:          id,
			Name:        fmt.Sprintf("Demo Group %d", i),
			Description: fmt.Sprintf("This is a demo group #%d for testing purposes.", i),
			Preferences: map[string]any{
				"focus":             e.pick(seedFocuses),
				"meeting_frequency": e.pick(seedFrequencies),
			},
			Tags:    e.sample(seedGroupTags, 3),
			Members: e.sample(e.profileOrder, 1+e.rng.Intn(3)),
		}
		e.groups[id] = g
		e.groupOrder = append(e.groupOrder, id)
	}
}

// pick returns one random element of pool.
func (e *Engine) pick(pool []string) string {
	return pool[e.rng.Intn(len(pool))]
}

// sample returns n distinct random elements of pool, in random order.
func (e *Engine) sample(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := e.rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
