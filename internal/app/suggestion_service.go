// internal/app/suggestion_service.go
package app

import (
	"math/rand"
	"sync"
	"time"

	"forget_me_not/internal/domain/person"
)

type suggestion struct {
	text string
	hint person.RelationshipHint // empty means any relationship
}

var checkInSuggestions = []suggestion{
	{text: "Send some recent photos"},
	{text: "Send a \"what's up, how is life?\" message"},
	{text: "Schedule a short call"},
	{text: "Send a voice note"},
	{text: "Share something that made you think of them"},
	{text: "Send a funny meme or link"},
	{text: "Ask how their week went"},
	{text: "Plan a coffee or lunch catch-up"},
	{text: "Send a photo from a memory you shared"},
}

// SuggestionService picks a few check-in ideas, optionally biased by the
// person's relationship hint. The randomness source is injected so selection
// is deterministic under test. Presentation glue only: no correctness contract
// beyond count and deduplication.
type SuggestionService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSuggestionService builds a service around rng; a nil rng gets a
// time-seeded source.
func NewSuggestionService(rng *rand.Rand) *SuggestionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SuggestionService{rng: rng}
}

// Pick returns up to count distinct suggestion texts. Suggestions matching the
// hint are listed twice in the draw pool, which biases but never excludes.
func (s *SuggestionService) Pick(hint person.RelationshipHint, count int) []string {
	pool := make([]suggestion, 0, 2*len(checkInSuggestions))
	if hint != "" {
		for _, sg := range checkInSuggestions {
			if sg.hint == "" || sg.hint == hint {
				pool = append(pool, sg)
			}
		}
	}
	pool = append(pool, checkInSuggestions...)

	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()

	seen := make(map[string]struct{}, count)
	out := make([]string, 0, count)
	for _, sg := range pool {
		if len(out) >= count {
			break
		}
		if _, ok := seen[sg.text]; ok {
			continue
		}
		seen[sg.text] = struct{}{}
		out = append(out, sg.text)
	}
	return out
}
