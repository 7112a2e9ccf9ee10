package memoize

import (
	"fmt"
	"math/bits"

	"github.com/jonwraymond/memoization/eviction"
)

// Algorithm identifies an eviction algorithm. Every identifier is a single
// power-of-two flag so sets of algorithms can be expressed as bit masks.
type Algorithm uint32

const (
	FIFO Algorithm = 1 << iota
	LRU
	LFU
)

// Builtin is the mask of the algorithms provided by this package.
const Builtin = FIFO | LRU | LFU

// String returns the name of a built-in algorithm, or Algorithm(n).
func (a Algorithm) String() string {
	switch a {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case LFU:
		return "LFU"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint32(a))
	}
}

// Valid reports whether a is exactly one flag.
func (a Algorithm) Valid() bool {
	return bits.OnesCount32(uint32(a)) == 1
}

// In reports whether a is part of mask.
func (a Algorithm) In(mask Algorithm) bool {
	return a != 0 && a&mask == a
}

func (a Algorithm) evictionType() (eviction.Type, error) {
	switch a {
	case FIFO:
		return eviction.FIFO, nil
	case LRU:
		return eviction.LRU, nil
	case LFU:
		return eviction.LFU, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, a)
	}
}
