package game

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrPersistence   = errors.New("persistence error")
	ErrNoResultStore = errors.New("no result store configured")
)
