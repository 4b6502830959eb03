// Package card provides the terminal shape card.
package card

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shapematch/internal/game"
	"github.com/verte-zerg/shapematch/internal/model"
)

const (
	// Width and Height are the rendered card size in cells, borders included.
	Width  = 9
	Height = 5
	back   = "?"
)

var glyphs = map[model.Shape]string{
	model.Circle:   "●",
	model.Square:   "■",
	model.Triangle: "▲",
}

var palette = map[model.Colour]lipgloss.Color{
	model.Red:    lipgloss.Color("#E5484D"),
	model.Green:  lipgloss.Color("#46A758"),
	model.Blue:   lipgloss.Color("#3E63DD"),
	model.Yellow: lipgloss.Color("#F5D90A"),
	model.Orange: lipgloss.Color("#F76B15"),
	model.Purple: lipgloss.Color("#8E4EC6"),
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6E6E6E")).
			Width(Width-2).
			Height(Height-2).
			Align(lipgloss.Center, lipgloss.Center)
	focusBorder   = lipgloss.Color("#C89A3A")
	matchedBorder = lipgloss.Color("#3A3A3A")
	backStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
)

// ShapeCard is a two-faced card showing a coloured shape when face up.
type ShapeCard struct {
	id        model.Identity
	faceUp    bool
	matched   bool
	observers []func(game.Card)
}

// New returns a face-down card. It satisfies game.CardFactory.
func New(id model.Identity) game.Card {
	return &ShapeCard{id: id}
}

// Identity implements game.Card.
func (c *ShapeCard) Identity() model.Identity { return c.id }

// IsFaceUp implements game.Card.
func (c *ShapeCard) IsFaceUp() bool { return c.faceUp }

// Flip implements game.Card.
func (c *ShapeCard) Flip() { c.faceUp = !c.faceUp }

// Matched implements game.Card.
func (c *ShapeCard) Matched() bool { return c.matched }

// SetMatched implements game.Card.
func (c *ShapeCard) SetMatched(matched bool) { c.matched = matched }

// OnActivate implements game.Card.
func (c *ShapeCard) OnActivate(fn func(game.Card)) {
	c.observers = append(c.observers, fn)
}

// Activate notifies observers, as a click would.
func (c *ShapeCard) Activate() {
	for _, fn := range c.observers {
		fn(c)
	}
}

// Face returns the unstyled face text: the shape glyph when face up, "?" otherwise.
func (c *ShapeCard) Face() string {
	if !c.faceUp {
		return back
	}
	return glyphs[c.id.Shape]
}

// View renders the card. Focused cards get a highlighted border; matched cards are dimmed.
func (c *ShapeCard) View(focused bool) string {
	frame, face := c.styles(focused)
	text := back
	if c.faceUp {
		text = glyphs[c.id.Shape]
	}
	return frame.Render(face.Render(text))
}

// styles returns the frame and face styles. Dimming is applied to each style
// rather than to rendered output, whose inner resets would cancel it.
func (c *ShapeCard) styles(focused bool) (frame, face lipgloss.Style) {
	frame = frameStyle
	face = backStyle
	if c.faceUp {
		face = lipgloss.NewStyle().Foreground(palette[c.id.Colour])
	}
	switch {
	case focused:
		frame = frame.BorderForeground(focusBorder)
	case c.matched:
		frame = frame.BorderForeground(matchedBorder)
	}
	if c.matched {
		frame = frame.Faint(true)
		face = face.Faint(true)
	}
	return frame, face
}
