// Package deck builds shuffled, paired card sequences.
package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/shapematch/internal/model"
)

// ErrPairCount reports a pair count outside the identity universe.
var ErrPairCount = errors.New("pair count out of range")

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Generator produces randomized decks from a fixed identity universe.
type Generator struct {
	rnd      RNG
	universe []model.Identity
}

// New returns a Generator over every shape and colour, seeded with the current time.
func New() *Generator {
	return NewWithRNG(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRNG returns a Generator over the full universe using rnd.
func NewWithRNG(rnd RNG) *Generator {
	return NewWithUniverse(rnd, model.Shapes(), model.Colours())
}

// NewWithUniverse returns a Generator restricted to the cross product of shapes and colours.
func NewWithUniverse(rnd RNG, shapes []model.Shape, colours []model.Colour) *Generator {
	return &Generator{rnd: rnd, universe: Universe(shapes, colours)}
}

// Universe builds the cross product of shapes and colours in shape-major order.
func Universe(shapes []model.Shape, colours []model.Colour) []model.Identity {
	out := make([]model.Identity, 0, len(shapes)*len(colours))
	for _, s := range shapes {
		for _, c := range colours {
			out = append(out, model.Identity{Shape: s, Colour: c})
		}
	}
	return out
}

// MaxPairs returns the number of distinct identities available.
func (g *Generator) MaxPairs() int {
	return len(g.universe)
}

// Generate draws pairs distinct identities uniformly, emits each twice when duplicate
// is set, and returns them in uniformly shuffled order.
func (g *Generator) Generate(pairs int, duplicate bool) ([]model.Identity, error) {
	if pairs <= 0 || pairs > len(g.universe) {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrPairCount, pairs, len(g.universe))
	}

	pool := make([]model.Identity, len(g.universe))
	copy(pool, g.universe)
	// Partial Fisher-Yates: the first pairs slots end up as a uniform sample.
	for i := 0; i < pairs; i++ {
		j := i + g.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	selected := pool[:pairs]

	size := pairs
	if duplicate {
		size *= 2
	}
	cards := make([]model.Identity, 0, size)
	for _, id := range selected {
		cards = append(cards, id)
		if duplicate {
			cards = append(cards, id)
		}
	}
	g.Shuffle(cards)
	return cards, nil
}

// Shuffle permutes cards in place uniformly at random.
func (g *Generator) Shuffle(cards []model.Identity) {
	for i := len(cards) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
