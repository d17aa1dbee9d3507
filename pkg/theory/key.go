package theory

import (
	"errors"
	"fmt"
	"strings"
)

// Key is one of the 12 chromatic pitch classes, identified by its ordinal
// (1..12) in the fixed key cycle below.
type Key int

const (
	A Key = iota + 1
	ASharp
	B
	C
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
)

// KeyCount is the length of the key cycle.
const KeyCount = 12

// ErrInvalidKey is returned when a key name cannot be parsed
var ErrInvalidKey = errors.New("invalid key")

// keyCycle is the fixed cyclic order. Index i holds the key with ordinal i+1.
var keyCycle = [KeyCount]Key{A, ASharp, B, C, CSharp, D, DSharp, E, F, FSharp, G, GSharp}

var keyNames = [KeyCount]string{
	"A", "ASharp", "B", "C", "CSharp", "D", "DSharp", "E", "F", "FSharp", "G", "GSharp",
}

// Keys returns the key cycle in order
func Keys() []Key {
	out := make([]Key, KeyCount)
	copy(out, keyCycle[:])
	return out
}

// Ordinal returns the 1-based position of the key in the cycle
func (k Key) Ordinal() int {
	return int(k)
}

// Valid reports whether k is one of the 12 keys
func (k Key) Valid() bool {
	return k >= A && k <= GSharp
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k-1]
}

// KeyFromOrdinal maps any integer onto the cycle (modulo 12, 1-based)
func KeyFromOrdinal(ordinal int) Key {
	return keyCycle[mod(ordinal-1, KeyCount)]
}

// ParseKey accepts key names such as "C", "csharp", "C#" or "FSharp"
func ParseKey(s string) (Key, error) {
	name := strings.TrimSpace(s)
	name = strings.ReplaceAll(name, "#", "Sharp")
	for i, n := range keyNames {
		if strings.EqualFold(n, name) {
			return keyCycle[i], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
}

// KeyNames returns the names of every key in cycle order
func KeyNames() []string {
	out := make([]string, KeyCount)
	copy(out, keyNames[:])
	return out
}

// KeyBelow returns the previous key in the cycle, wrapping from A to GSharp
func KeyBelow(k Key) Key {
	return KeyFromOrdinal(k.Ordinal() - 1)
}

// mod is a modulo that never returns a negative value.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, n int) int {
	q := a / n
	if (a%n != 0) && ((a < 0) != (n < 0)) {
		q--
	}
	return q
}
