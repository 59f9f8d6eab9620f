package board

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peter-guba/benchmaker/internal/hex"
)

// environmentDoc mirrors the parts of an environment file the generator uses.
// The root element name is not checked.
type environmentDoc struct {
	Radius *string  `xml:"Radius"`
	Suns   []sunDoc `xml:"Sun"`
}

type sunDoc struct {
	Q string `xml:"Q,attr"`
	R string `xml:"R,attr"`
}

// NameOf returns the board name for an environment file: its base name with
// the extension removed.
func NameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Load reads an environment file. The board is named by NameOf.
func Load(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment: %w", err)
	}
	defer f.Close()

	return Parse(f, NameOf(path))
}

// Parse decodes an environment document.
// The radius must be present and a non-negative integer; every Sun element
// contributes itself and its neighbours to the impassable set.
func Parse(r io.Reader, name string) (*Board, error) {
	var doc environmentDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEnvironment, name, err)
	}

	if doc.Radius == nil {
		return nil, fmt.Errorf("%w: %s: missing Radius", ErrMalformedEnvironment, name)
	}
	radius, err := strconv.Atoi(strings.TrimSpace(*doc.Radius))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: radius %q is not an integer", ErrMalformedEnvironment, name, *doc.Radius)
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: %s: radius %d is negative", ErrMalformedEnvironment, name, radius)
	}

	suns := make([]hex.Coord, 0, len(doc.Suns))
	for i, s := range doc.Suns {
		sun, err := s.coord()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: sun %d: %v", ErrMalformedEnvironment, name, i, err)
		}
		suns = append(suns, sun)
	}

	return New(name, radius, suns...), nil
}

func (s sunDoc) coord() (hex.Coord, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s.Q))
	if err != nil {
		return hex.Coord{}, fmt.Errorf("invalid Q %q", s.Q)
	}
	r, err := strconv.Atoi(strings.TrimSpace(s.R))
	if err != nil {
		return hex.Coord{}, fmt.Errorf("invalid R %q", s.R)
	}
	return hex.Coord{Q: q, R: r}, nil
}
