package game

import "github.com/verte-zerg/shapematch/internal/model"

// Instance is a headless Card. It is the default CardFactory product.
type Instance struct {
	id        model.Identity
	faceUp    bool
	matched   bool
	observers []func(Card)
}

// NewInstance returns a face-down, unmatched card.
func NewInstance(id model.Identity) Card {
	return &Instance{id: id}
}

func (c *Instance) Identity() model.Identity { return c.id }
func (c *Instance) IsFaceUp() bool           { return c.faceUp }
func (c *Instance) Flip()                    { c.faceUp = !c.faceUp }
func (c *Instance) Matched() bool            { return c.matched }
func (c *Instance) SetMatched(matched bool)  { c.matched = matched }

// OnActivate implements Card.
func (c *Instance) OnActivate(fn func(Card)) {
	c.observers = append(c.observers, fn)
}

// Activate notifies every registered observer.
func (c *Instance) Activate() {
	for _, fn := range c.observers {
		fn(c)
	}
}
