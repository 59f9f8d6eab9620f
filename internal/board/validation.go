package board

import (
	"errors"
	"fmt"

	"github.com/peter-guba/benchmaker/internal/hex"
)

var (
	ErrMalformedEnvironment = errors.New("malformed environment")
	ErrOutOfBounds          = errors.New("cell outside board")
	ErrImpassable           = errors.New("cell is impassable")
)

// CheckCell reports why a unit may not stand on c, or nil if it may.
func (b *Board) CheckCell(c hex.Coord) error {
	if !b.Contains(c) {
		return fmt.Errorf("%w: %v not within radius %d", ErrOutOfBounds, c, b.Radius)
	}
	if b.Impassable(c) {
		return fmt.Errorf("%w: %v", ErrImpassable, c)
	}
	return nil
}
