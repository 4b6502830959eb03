package game

import (
	"context"
	"time"

	"github.com/verte-zerg/shapematch/internal/model"
)

// Card is a placed card on the board. The controller only sees cards through this
// interface; rendering belongs to the implementation.
type Card interface {
	Identity() model.Identity
	IsFaceUp() bool
	Flip()
	Matched() bool
	SetMatched(matched bool)
	// OnActivate registers fn to be called whenever the card is activated.
	OnActivate(fn func(Card))
}

// CardFactory creates a face-down card for an identity.
type CardFactory func(id model.Identity) Card

// Scheduler runs fn once after d. fn must not be called from inside After.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Dispatcher runs a detached task whose outcome never feeds back into game state.
type Dispatcher interface {
	Dispatch(task func(ctx context.Context) error)
}

// ResultStore is an append-only store of won games.
type ResultStore interface {
	Save(ctx context.Context, rec model.ResultRecord) (string, error)
	QueryAll(ctx context.Context) ([]model.ResultRecord, error)
}
