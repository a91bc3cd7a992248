/*
Package flagsteg is a library for hiding data inside generated pride flag
images and recovering it again.

Each style of flag implements the Flag interface. The data survives only
lossless handling of the PNG, any lossy recompression destroys it. Nothing
is encrypted.
*/
package flagsteg

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bodgit/flagsteg/transgender"
)

// Flag is implemented by each style of flag.
type Flag interface {
	// Name returns the name of the style
	Name() string
	// Capacity returns the number of nibbles the flag can carry
	Capacity() int
	// Generate returns a flag with no data
	Generate() ([]byte, error)
	// Encode returns a flag carrying the data
	Encode([]byte) ([]byte, error)
	// Decode returns the data carried by a flag
	Decode([]byte) ([]byte, error)
	// IsValid reports whether the flag looks like it carries data
	IsValid([]byte) bool
}

var styles = map[string]func(int, int) Flag{
	"transgender": func(width, height int) Flag { return transgender.New(width, height) },
}

// Styles returns the names of the known styles.
func Styles() []string {
	s := make([]string, 0, len(styles))
	for k := range styles {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// Lookup returns a width by height flag of the named style.
func Lookup(style string, width, height int) (Flag, error) {
	fn, ok := styles[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("unknown style %q", style)
	}
	return fn(width, height), nil
}

type FlagSteg struct {
	db     *FlagDB
	flag   Flag
	logger *log.Logger
}

func New(flag Flag, db *FlagDB, logger *log.Logger) *FlagSteg {
	return &FlagSteg{
		db:     db,
		flag:   flag,
		logger: logger,
	}
}
