// Package game implements the match-checking state machine of the memory game.
//
// A Controller owns one board of cards and the session counters. Cards report
// activations through callbacks; a turn ends when the Scheduler fires the pending
// resolution. Exported methods are safe to call from the goroutine a realtime
// Scheduler fires on; the turn ordering itself rests on the checking guard.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/shapematch/internal/deck"
	"github.com/verte-zerg/shapematch/internal/model"
	"github.com/verte-zerg/shapematch/internal/stats"
)

const (
	// DefaultDelay is how long two face-up cards stay visible before resolution.
	DefaultDelay   = time.Second
	persistTimeout = 5 * time.Second
)

// State is the controller's turn state.
type State int

const (
	Idle State = iota
	Pending
	Won
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Won:
		return "won"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session holds the counters of the current game.
type Session struct {
	Moves        int
	MatchedPairs int
	TotalPairs   int
	Checking     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithGenerator sets the deck generator.
func WithGenerator(gen *deck.Generator) Option {
	return func(c *Controller) { c.gen = gen }
}

// WithCardFactory sets how cards are created for each dealt identity.
func WithCardFactory(f CardFactory) Option {
	return func(c *Controller) { c.newCard = f }
}

// WithScheduler sets the scheduler for delayed turn resolution.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithDispatcher sets how result saves are run.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) { c.dispatch = d }
}

// WithResultStore enables persistence of won games. A nil store disables it.
func WithResultStore(s ResultStore) Option {
	return func(c *Controller) { c.results = s }
}

// WithDelay sets the resolution delay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithWinHandler registers fn to be called once per won session with the final move
// count. fn runs with the controller locked and must not call back into it.
func WithWinHandler(fn func(moves int)) Option {
	return func(c *Controller) { c.onWin = fn }
}

// Controller drives turn sequencing, match evaluation, win detection and reset.
type Controller struct {
	mu sync.Mutex

	size     model.BoardSize
	gen      *deck.Generator
	newCard  CardFactory
	sched    Scheduler
	dispatch Dispatcher
	results  ResultStore
	delay    time.Duration
	logger   *slog.Logger
	onWin    func(moves int)

	cards      []Card
	buffer     []Card
	session    Session
	state      State
	generation uint64
}

// New validates size and deals the first board. Without WithScheduler the pending
// resolution fires from a time.AfterFunc goroutine.
func New(size model.BoardSize, opts ...Option) (*Controller, error) {
	c := &Controller{
		size:     size,
		newCard:  NewInstance,
		dispatch: GoDispatcher{},
		delay:    DefaultDelay,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gen == nil {
		c.gen = deck.New()
	}
	if c.sched == nil {
		c.sched = TimerScheduler{}
	}
	if err := deck.ValidateSize(size, c.gen.MaxPairs()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := c.deal(); err != nil {
		return nil, err
	}
	return c, nil
}

// Size returns the board layout.
func (c *Controller) Size() model.BoardSize {
	return c.size
}

// Cards returns the dealt cards in board order.
func (c *Controller) Cards() []Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// TurnBuffer returns the face-up cards of the current turn.
func (c *Controller) TurnBuffer() []Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Card, len(c.buffer))
	copy(out, c.buffer)
	return out
}

// Session returns a snapshot of the counters.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// State returns the current turn state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WinMessage returns the win banner text, or "" before the game is won.
func (c *Controller) WinMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Won {
		return ""
	}
	return fmt.Sprintf("You won! Total moves: %d", c.session.Moves)
}

// Activate handles a card activation. Calls during the checking window, on matched
// cards, on cards already in the turn, or on cards from an earlier deal are ignored.
func (c *Controller) Activate(card Card) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return
	}
	if card.Matched() || c.buffered(card) || !c.owns(card) {
		return
	}
	if card.IsFaceUp() {
		return
	}
	card.Flip()
	c.buffer = append(c.buffer, card)
	c.logger.Debug("card flipped", "card", card.Identity().String(), "buffered", len(c.buffer))

	if len(c.buffer) < 2 {
		return
	}
	c.session.Moves++
	c.session.Checking = true
	c.state = Pending
	gen := c.generation
	c.sched.After(c.delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.resolveTurn(gen)
	})
}

func (c *Controller) resolveTurn(gen uint64) {
	if gen != c.generation || c.state != Pending || len(c.buffer) != 2 {
		c.logger.Debug("stale turn resolution dropped", "generation", gen)
		return
	}
	first, second := c.buffer[0], c.buffer[1]
	matched := first.Identity() == second.Identity()
	if matched {
		first.SetMatched(true)
		second.SetMatched(true)
		c.session.MatchedPairs++
	} else {
		first.Flip()
		second.Flip()
	}
	c.buffer = nil
	c.session.Checking = false
	c.state = Idle
	c.logger.Debug("turn resolved", "match", matched, "moves", c.session.Moves, "pairs", c.session.MatchedPairs)

	if matched && c.session.MatchedPairs == c.session.TotalPairs {
		c.state = Won
		c.win()
	}
}

func (c *Controller) win() {
	moves := c.session.Moves
	c.logger.Info("game won", "moves", moves, "size", c.size.String())
	if c.onWin != nil {
		c.onWin(moves)
	}
	if c.results == nil {
		return
	}
	results := c.results
	logger := c.logger
	c.dispatch.Dispatch(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()
		id, err := results.Save(ctx, model.ResultRecord{Clicks: moves})
		if err != nil {
			logger.Error("failed to save result", "clicks", moves, "error", err)
			return fmt.Errorf("%w: save result: %w", ErrPersistence, err)
		}
		logger.Info("result saved", "clicks", moves, "id", id)
		return nil
	})
}

// Reset abandons the current game and deals a freshly shuffled board. Any pending
// resolution from before the reset is dropped when it fires. On error the current
// game is left untouched.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cards, err := c.newDeal()
	if err != nil {
		return err
	}
	c.generation++
	for _, card := range c.cards {
		if card.IsFaceUp() {
			card.Flip()
		}
		card.SetMatched(false)
	}
	c.install(cards)
	return nil
}

// ComputeAverageClicks returns the mean move count over every stored result.
func (c *Controller) ComputeAverageClicks(ctx context.Context) (stats.Average, error) {
	if c.results == nil {
		return stats.Average{}, ErrNoResultStore
	}
	records, err := c.results.QueryAll(ctx)
	if err != nil {
		c.logger.Error("failed to query results", "error", err)
		return stats.Average{}, fmt.Errorf("%w: query results: %w", ErrPersistence, err)
	}
	avg := stats.AverageClicks(records)
	c.logger.Debug("average computed", "mean", avg.Mean, "games", avg.Count)
	return avg, nil
}

func (c *Controller) deal() error {
	cards, err := c.newDeal()
	if err != nil {
		return err
	}
	c.install(cards)
	return nil
}

// newDeal creates the cards for a fresh board without touching controller state.
func (c *Controller) newDeal() ([]Card, error) {
	ids, err := c.gen.Generate(c.size.Pairs(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	cards := make([]Card, len(ids))
	for i, id := range ids {
		card := c.newCard(id)
		card.OnActivate(c.Activate)
		cards[i] = card
	}
	return cards, nil
}

func (c *Controller) install(cards []Card) {
	c.cards = cards
	c.buffer = nil
	c.session = Session{TotalPairs: c.size.Pairs()}
	c.state = Idle
}

func (c *Controller) buffered(card Card) bool {
	for _, b := range c.buffer {
		if b == card {
			return true
		}
	}
	return false
}

func (c *Controller) owns(card Card) bool {
	for _, cd := range c.cards {
		if cd == card {
			return true
		}
	}
	return false
}
