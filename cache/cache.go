package cache

import (
	"errors"
	"time"
)

// Sentinel errors for key derivation.
var (
	ErrNilKey        = errors.New("cache: key is nil")
	ErrUnhashableKey = errors.New("cache: key is not comparable")
	ErrNilKeyMaker   = errors.New("cache: key maker is nil")
)

// Key identifies one argument set. It always holds a comparable dynamic value
// so it can index a Go map.
type Key any

// KeyMaker derives a Key from call arguments.
//
// Contract:
//   - Injectivity: distinct argument sets must never produce equal keys.
//   - Hashability: the returned Key must be comparable at run time.
//   - Determinism: equal argument sets must produce equal keys.
type KeyMaker func(args Args) (Key, error)

// Clock returns the current time. Stores read it for TTL decisions.
type Clock func() time.Time

// ValidateKey checks that key can index a map.
func ValidateKey(key Key) error {
	if key == nil {
		return ErrNilKey
	}
	if !isComparable(key) {
		return ErrUnhashableKey
	}
	return nil
}
