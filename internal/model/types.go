// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Shape is the drawn figure on a card face.
type Shape string

// Supported shapes.
const (
	Circle   Shape = "circle"
	Square   Shape = "square"
	Triangle Shape = "triangle"
)

// Colour is the fill colour of a card face.
type Colour string

// Supported colours.
const (
	Red    Colour = "red"
	Green  Colour = "green"
	Blue   Colour = "blue"
	Yellow Colour = "yellow"
	Orange Colour = "orange"
	Purple Colour = "purple"
)

// Shapes lists every shape in universe order.
func Shapes() []Shape {
	return []Shape{Circle, Square, Triangle}
}

// Colours lists every colour in universe order.
func Colours() []Colour {
	return []Colour{Red, Green, Blue, Yellow, Orange, Purple}
}

// Identity decides whether two cards match. It is a comparable value type.
type Identity struct {
	Shape  Shape
	Colour Colour
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s", id.Shape, id.Colour)
}

// BoardSize is the parsed rows x cols board layout.
type BoardSize struct {
	Rows int
	Cols int
}

// Cards returns the number of card slots on the board.
func (s BoardSize) Cards() int {
	return s.Rows * s.Cols
}

// Pairs returns the number of pairs needed to fill the board.
func (s BoardSize) Pairs() int {
	return s.Cards() / 2
}

func (s BoardSize) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// GameConfig defines play settings.
type GameConfig struct {
	Size  BoardSize
	Delay time.Duration
}

// StoreConfig selects and configures the result store backend.
type StoreConfig struct {
	Backend       string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	PostgresDSN   string
}

// ResultRecord is one won game. Records are append-only.
type ResultRecord struct {
	ID        string
	Clicks    int
	Timestamp time.Time
}
