package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Generator produces short utterances for AI seats and takeovers.
// Implementations must return within a bounded time; an error or empty
// result makes the engine fall back to a local template.
type Generator interface {
	Describe(ctx context.Context, word string) (string, error)
	Suspect(ctx context.Context, seat int) (string, error)
}

// FallbackDescription is the local template for an Undercover description.
func FallbackDescription(word string) string {
	if word == "" {
		return "Hard to say, I'll listen to the others first."
	}
	return fmt.Sprintf("%s, I think this word is special.", word)
}

// FallbackSuspicion is the local template for a Werewolf day speech.
func FallbackSuspicion(seat int) string {
	return fmt.Sprintf("I think seat %d is suspicious.", seat)
}

// TemplateGenerator never calls out and always answers from the templates.
type TemplateGenerator struct{}

func (TemplateGenerator) Describe(_ context.Context, word string) (string, error) {
	return FallbackDescription(word), nil
}

func (TemplateGenerator) Suspect(_ context.Context, seat int) (string, error) {
	return FallbackSuspicion(seat), nil
}

// lockedRand serialises access to a *rand.Rand shared by all rooms.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{rng: rng}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

func (r *lockedRand) chance(percent int) bool {
	return r.Intn(100) < percent
}
