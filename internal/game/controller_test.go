package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/shapematch/internal/deck"
	"github.com/verte-zerg/shapematch/internal/model"
)

type manualScheduler struct {
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) After(d time.Duration, fn func()) {
	s.pending = append(s.pending, fn)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) fire(t *testing.T) {
	t.Helper()
	if len(s.pending) == 0 {
		t.Fatalf("no pending resolution to fire")
	}
	fn := s.pending[0]
	s.pending = s.pending[1:]
	fn()
}

type syncDispatcher struct {
	errs []error
}

func (d *syncDispatcher) Dispatch(task func(ctx context.Context) error) {
	d.errs = append(d.errs, task(context.Background()))
}

type fakeStore struct {
	records  []model.ResultRecord
	saveErr  error
	queryErr error
	saves    int
}

func (s *fakeStore) Save(_ context.Context, rec model.ResultRecord) (string, error) {
	s.saves++
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.records = append(s.records, rec)
	return "id", nil
}

func (s *fakeStore) QueryAll(_ context.Context) ([]model.ResultRecord, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.records, nil
}

type harness struct {
	ctrl  *Controller
	sched *manualScheduler
	disp  *syncDispatcher
	store *fakeStore
	wins  []int
}

func newHarness(t *testing.T, rows, cols int, store *fakeStore) *harness {
	t.Helper()
	h := &harness{sched: &manualScheduler{}, disp: &syncDispatcher{}, store: store}
	opts := []Option{
		WithGenerator(deck.NewWithRNG(rand.New(rand.NewSource(1)))),
		WithScheduler(h.sched),
		WithDispatcher(h.disp),
		WithDelay(250 * time.Millisecond),
		WithWinHandler(func(moves int) { h.wins = append(h.wins, moves) }),
	}
	if store != nil {
		opts = append(opts, WithResultStore(store))
	}
	ctrl, err := New(model.BoardSize{Rows: rows, Cols: cols}, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.ctrl = ctrl
	return h
}

// pairs groups the dealt cards by identity.
func (h *harness) pairs() [][2]Card {
	byID := map[model.Identity][]Card{}
	var order []model.Identity
	for _, c := range h.ctrl.Cards() {
		if _, ok := byID[c.Identity()]; !ok {
			order = append(order, c.Identity())
		}
		byID[c.Identity()] = append(byID[c.Identity()], c)
	}
	out := make([][2]Card, 0, len(order))
	for _, id := range order {
		out = append(out, [2]Card{byID[id][0], byID[id][1]})
	}
	return out
}

func activate(c Card) {
	c.(*Instance).Activate()
}

func TestNewDealsFaceDownPairs(t *testing.T) {
	h := newHarness(t, 3, 4, nil)
	cards := h.ctrl.Cards()
	if len(cards) != 12 {
		t.Fatalf("expected 12 cards, got %d", len(cards))
	}
	for _, c := range cards {
		if c.IsFaceUp() || c.Matched() {
			t.Fatalf("expected fresh face-down card, got %+v", c)
		}
	}
	if len(h.pairs()) != 6 {
		t.Fatalf("expected 6 pairs")
	}
	s := h.ctrl.Session()
	if s != (Session{TotalPairs: 6}) {
		t.Fatalf("unexpected initial session: %+v", s)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle, got %s", h.ctrl.State())
	}
}

func TestNewRejectsBadSize(t *testing.T) {
	for _, size := range []model.BoardSize{{Rows: 3, Cols: 3}, {Rows: 6, Cols: 7}, {Rows: 0, Cols: 2}, {Rows: 4, Cols: 10}, {Rows: 4, Cols: 4611686018427387905}} {
		if _, err := New(size, WithScheduler(&manualScheduler{})); !errors.Is(err, ErrConfiguration) {
			t.Errorf("size %s: expected ErrConfiguration, got %v", size, err)
		}
	}
}

func TestTurnSequencing(t *testing.T) {
	h := newHarness(t, 2, 2, nil)
	p := h.pairs()
	a, b, c := p[0][0], p[1][0], p[0][1]

	activate(a)
	if buf := h.ctrl.TurnBuffer(); len(buf) != 1 || buf[0] != a || !a.IsFaceUp() {
		t.Fatalf("expected buffer [A] with A face up, got %v", buf)
	}

	activate(a)
	if buf := h.ctrl.TurnBuffer(); len(buf) != 1 {
		t.Fatalf("re-activating A should be a no-op, buffer %v", buf)
	}
	if !a.IsFaceUp() {
		t.Fatalf("re-activating A must not flip it back")
	}

	activate(b)
	s := h.ctrl.Session()
	if len(h.ctrl.TurnBuffer()) != 2 || s.Moves != 1 || !s.Checking {
		t.Fatalf("expected pending turn after B, session %+v", s)
	}
	if h.ctrl.State() != Pending {
		t.Fatalf("expected pending, got %s", h.ctrl.State())
	}
	if len(h.sched.delays) != 1 || h.sched.delays[0] != 250*time.Millisecond {
		t.Fatalf("expected one resolution scheduled with configured delay, got %v", h.sched.delays)
	}

	activate(c)
	if c.IsFaceUp() || len(h.ctrl.TurnBuffer()) != 2 {
		t.Fatalf("activation during checking window must be ignored")
	}

	h.sched.fire(t)
	s = h.ctrl.Session()
	if len(h.ctrl.TurnBuffer()) != 0 || s.Checking {
		t.Fatalf("expected cleared turn after resolution, session %+v", s)
	}
	if a.IsFaceUp() || b.IsFaceUp() {
		t.Fatalf("mismatched cards should be face down again")
	}
	if s.MatchedPairs != 0 {
		t.Fatalf("mismatch must not count a pair")
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle, got %s", h.ctrl.State())
	}
}

func TestMatchResolution(t *testing.T) {
	h := newHarness(t, 2, 2, nil)
	pair := h.pairs()[0]

	h.ctrl.Activate(pair[0])
	h.ctrl.Activate(pair[1])
	h.sched.fire(t)

	if !pair[0].Matched() || !pair[1].Matched() {
		t.Fatalf("expected both cards matched")
	}
	if !pair[0].IsFaceUp() || !pair[1].IsFaceUp() {
		t.Fatalf("matched cards stay face up")
	}
	if got := h.ctrl.Session().MatchedPairs; got != 1 {
		t.Fatalf("expected 1 matched pair, got %d", got)
	}

	before := h.ctrl.Session()
	h.ctrl.Activate(pair[0])
	if h.ctrl.Session() != before || len(h.ctrl.TurnBuffer()) != 0 {
		t.Fatalf("activating a matched card must be a no-op")
	}
}

func TestWinSavesOnce(t *testing.T) {
	store := &fakeStore{}
	h := newHarness(t, 2, 2, store)
	p := h.pairs()

	// One miss, then both pairs.
	h.ctrl.Activate(p[0][0])
	h.ctrl.Activate(p[1][0])
	h.sched.fire(t)
	for _, pair := range p {
		h.ctrl.Activate(pair[0])
		h.ctrl.Activate(pair[1])
		h.sched.fire(t)
	}

	if h.ctrl.State() != Won {
		t.Fatalf("expected won, got %s", h.ctrl.State())
	}
	if got := h.ctrl.WinMessage(); got != "You won! Total moves: 3" {
		t.Fatalf("unexpected win message: %q", got)
	}
	if len(h.wins) != 1 || h.wins[0] != 3 {
		t.Fatalf("expected one win notification with 3 moves, got %v", h.wins)
	}
	if store.saves != 1 || len(store.records) != 1 || store.records[0].Clicks != 3 {
		t.Fatalf("expected exactly one save with 3 clicks, got saves=%d records=%+v", store.saves, store.records)
	}

	for _, c := range h.ctrl.Cards() {
		h.ctrl.Activate(c)
	}
	if store.saves != 1 || len(h.wins) != 1 || len(h.sched.pending) != 0 {
		t.Fatalf("won game must not react to further activations")
	}
}

func TestWinWithoutStore(t *testing.T) {
	h := newHarness(t, 1, 2, nil)
	p := h.pairs()
	h.ctrl.Activate(p[0][0])
	h.ctrl.Activate(p[0][1])
	h.sched.fire(t)
	if h.ctrl.State() != Won {
		t.Fatalf("expected won without a result store")
	}
	if len(h.disp.errs) != 0 {
		t.Fatalf("expected no persistence task without a store")
	}
}

func TestSaveFailureKeepsWin(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("store unavailable")}
	h := newHarness(t, 1, 2, store)
	p := h.pairs()
	h.ctrl.Activate(p[0][0])
	h.ctrl.Activate(p[0][1])
	h.sched.fire(t)

	if h.ctrl.State() != Won || h.ctrl.Session().MatchedPairs != 1 {
		t.Fatalf("failed save must not change game state")
	}
	if len(h.disp.errs) != 1 || !errors.Is(h.disp.errs[0], ErrPersistence) {
		t.Fatalf("expected persistence error from save task, got %v", h.disp.errs)
	}
}

func TestResetDropsPendingResolution(t *testing.T) {
	store := &fakeStore{}
	h := newHarness(t, 1, 2, store)
	old := h.ctrl.Cards()
	h.ctrl.Activate(old[0])
	h.ctrl.Activate(old[1])

	if err := h.ctrl.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	s := h.ctrl.Session()
	if s != (Session{TotalPairs: 1}) || h.ctrl.State() != Idle || len(h.ctrl.TurnBuffer()) != 0 {
		t.Fatalf("expected fresh session after reset, got %+v", s)
	}
	for _, c := range old {
		if c.IsFaceUp() || c.Matched() {
			t.Fatalf("reset should clear old card flags")
		}
	}

	h.sched.fire(t)
	if h.ctrl.State() != Idle || h.ctrl.Session().MatchedPairs != 0 || store.saves != 0 {
		t.Fatalf("stale resolution must be a no-op after reset")
	}

	activate(old[0])
	if len(h.ctrl.TurnBuffer()) != 0 {
		t.Fatalf("cards from a previous deal must be ignored")
	}

	fresh := h.ctrl.Cards()
	if len(fresh) != 2 || fresh[0] == old[0] || fresh[1] == old[1] {
		t.Fatalf("reset should deal new cards")
	}
	activate(fresh[0])
	activate(fresh[1])
	h.sched.fire(t)
	if h.ctrl.State() != Won || store.saves != 1 || store.records[0].Clicks != 1 {
		t.Fatalf("expected new session to win and save 1 click, saves=%d", store.saves)
	}
}

func TestFailedResetKeepsCurrentGame(t *testing.T) {
	h := newHarness(t, 2, 2, nil)
	pairs := h.pairs()
	h.ctrl.Activate(pairs[0][0])
	h.ctrl.Activate(pairs[0][1])
	h.sched.fire(t)
	h.ctrl.Activate(pairs[1][0])
	before := h.ctrl.Session()
	cards := h.ctrl.Cards()

	// A one-identity universe cannot fill a 2x2 board.
	h.ctrl.gen = deck.NewWithUniverse(rand.New(rand.NewSource(1)), []model.Shape{model.Circle}, []model.Colour{model.Red})
	if err := h.ctrl.Reset(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	if h.ctrl.Session() != before || h.ctrl.State() != Idle {
		t.Fatalf("failed reset changed session: %+v", h.ctrl.Session())
	}
	after := h.ctrl.Cards()
	for i := range cards {
		if after[i] != cards[i] {
			t.Fatalf("failed reset replaced card %d", i)
		}
	}
	if !pairs[0][0].Matched() || !pairs[0][1].Matched() {
		t.Fatalf("failed reset cleared matched flags")
	}
	if buf := h.ctrl.TurnBuffer(); len(buf) != 1 || buf[0] != pairs[1][0] || !pairs[1][0].IsFaceUp() {
		t.Fatalf("failed reset cleared the open turn")
	}
	h.ctrl.Activate(pairs[1][1])
	h.sched.fire(t)
	if h.ctrl.State() != Won {
		t.Fatalf("expected game to continue to a win after failed reset, got %s", h.ctrl.State())
	}
}

func TestResetAfterWinAllowsNewGame(t *testing.T) {
	h := newHarness(t, 2, 2, nil)
	for _, pair := range h.pairs() {
		h.ctrl.Activate(pair[0])
		h.ctrl.Activate(pair[1])
		h.sched.fire(t)
	}
	if h.ctrl.State() != Won {
		t.Fatalf("expected won")
	}
	if err := h.ctrl.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if h.ctrl.State() != Idle || h.ctrl.WinMessage() != "" {
		t.Fatalf("expected idle after reset")
	}
	h.ctrl.Activate(h.ctrl.Cards()[0])
	if len(h.ctrl.TurnBuffer()) != 1 {
		t.Fatalf("expected new game to accept flips")
	}
}

func TestTurnBufferNeverExceedsTwo(t *testing.T) {
	h := newHarness(t, 4, 4, nil)
	rnd := rand.New(rand.NewSource(99))
	cards := h.ctrl.Cards()
	for step := 0; step < 2000 && h.ctrl.State() != Won; step++ {
		if len(h.sched.pending) > 0 && rnd.Intn(4) == 0 {
			h.sched.fire(t)
		} else {
			h.ctrl.Activate(cards[rnd.Intn(len(cards))])
		}
		buf := h.ctrl.TurnBuffer()
		if len(buf) > 2 {
			t.Fatalf("step %d: buffer length %d", step, len(buf))
		}
		if len(buf) == 2 && buf[0] == buf[1] {
			t.Fatalf("step %d: card buffered twice", step)
		}
		for _, c := range buf {
			if c.Matched() {
				t.Fatalf("step %d: matched card in buffer", step)
			}
		}
		if s := h.ctrl.Session(); s.Checking != (len(buf) == 2) {
			t.Fatalf("step %d: checking=%v with buffer %d", step, s.Checking, len(buf))
		}
	}
}

func TestComputeAverageClicks(t *testing.T) {
	store := &fakeStore{records: []model.ResultRecord{{Clicks: 4}, {Clicks: 6}}}
	h := newHarness(t, 1, 2, store)
	avg, err := h.ctrl.ComputeAverageClicks(context.Background())
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg.String() != "Average clicks: 5.00 (from 2 games)" {
		t.Fatalf("unexpected average: %s", avg)
	}

	store.records = nil
	avg, err = h.ctrl.ComputeAverageClicks(context.Background())
	if err != nil || !avg.Empty() || avg.String() != "No games played yet!" {
		t.Fatalf("expected empty average, got %v %v", avg, err)
	}

	store.queryErr = errors.New("offline")
	if _, err := h.ctrl.ComputeAverageClicks(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("query failure must not affect game state")
	}
}

func TestComputeAverageClicksWithoutStore(t *testing.T) {
	h := newHarness(t, 1, 2, nil)
	if _, err := h.ctrl.ComputeAverageClicks(context.Background()); !errors.Is(err, ErrNoResultStore) {
		t.Fatalf("expected ErrNoResultStore, got %v", err)
	}
}

func TestTimerSchedulerResolves(t *testing.T) {
	ctrl, err := New(model.BoardSize{Rows: 1, Cols: 2}, WithDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	cards := ctrl.Cards()
	ctrl.Activate(cards[0])
	ctrl.Activate(cards[1])
	deadline := time.Now().Add(2 * time.Second)
	for ctrl.State() != Won {
		if time.Now().After(deadline) {
			t.Fatalf("resolution never fired, state %s", ctrl.State())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Pending, "pending"},
		{Won, "won"},
		{State(9), "state(9)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
