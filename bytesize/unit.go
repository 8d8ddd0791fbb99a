// Package bytesize provides an immutable value type for byte quantities
// that auto-detects the most readable display unit (e.g. 32768 bytes
// renders as "32.0 Kb").
package bytesize

import "fmt"

// Unit is a magnitude on the binary byte-unit ladder.
type Unit int

const (
	Byte Unit = iota
	Kilobyte
	Megabyte
	Gigabyte
	Terabyte
)

// ladder is the fixed unit table, ordered by magnitude ascending. It is
// built once and never mutated.
var ladder = [...]struct {
	label     string
	magnitude float64
}{
	Byte:     {"b", 1},
	Kilobyte: {"Kb", 1 << 10},
	Megabyte: {"Mb", 1 << 20},
	Gigabyte: {"Gb", 1 << 30},
	Terabyte: {"Tb", 1 << 40},
}

func (u Unit) valid() bool {
	return u >= Byte && u <= Terabyte
}

// Label returns the short display label for the unit ("b", "Kb", ...).
func (u Unit) Label() string {
	if !u.valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return ladder[u].label
}

// Magnitude returns the number of bytes in one of this unit.
func (u Unit) Magnitude() float64 {
	if !u.valid() {
		return 1
	}
	return ladder[u].magnitude
}

func (u Unit) String() string {
	return u.Label()
}
