package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/shapematch/internal/model"
)

// ErrSize reports a malformed or unplayable board size.
var ErrSize = errors.New("invalid board size")

// ParseSize parses a "RxC" board size and checks that it can be filled with pairs
// drawn from a universe of maxPairs identities.
func ParseSize(value string, maxPairs int) (model.BoardSize, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.BoardSize{}, fmt.Errorf("%w: size is required", ErrSize)
	}
	parts := strings.Split(strings.ToLower(value), "x")
	if len(parts) != 2 {
		return model.BoardSize{}, fmt.Errorf("%w: %q must be in format rowsxcols e.g. 3x4", ErrSize, value)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.BoardSize{}, fmt.Errorf("%w: rows %q is not a number", ErrSize, parts[0])
	}
	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.BoardSize{}, fmt.Errorf("%w: cols %q is not a number", ErrSize, parts[1])
	}
	size := model.BoardSize{Rows: rows, Cols: cols}
	if err := ValidateSize(size, maxPairs); err != nil {
		return model.BoardSize{}, err
	}
	return size, nil
}

// ValidateSize checks a board size against the identity universe.
func ValidateSize(size model.BoardSize, maxPairs int) error {
	if size.Rows <= 0 || size.Cols <= 0 {
		return fmt.Errorf("%w: %s must have positive rows and cols", ErrSize, size)
	}
	// Bound each side before multiplying so Cards cannot overflow.
	if maxCards := 2 * maxPairs; size.Rows > maxCards || size.Cols > maxCards {
		return fmt.Errorf("%w: %s exceeds %d cards per side", ErrSize, size, maxCards)
	}
	if size.Cards()%2 != 0 {
		return fmt.Errorf("%w: %s has an odd number of cards", ErrSize, size)
	}
	if size.Pairs() == 0 {
		return fmt.Errorf("%w: %s holds no pairs", ErrSize, size)
	}
	if size.Pairs() > maxPairs {
		return fmt.Errorf("%w: %s needs %d pairs, only %d available", ErrSize, size, size.Pairs(), maxPairs)
	}
	return nil
}
