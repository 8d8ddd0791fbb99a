package bytesize

import (
	"errors"
	"math"
	"strconv"
)

// ErrInvalidAmount is returned for byte counts that are negative, NaN,
// or infinite.
var ErrInvalidAmount = errors.New("bytesize: byte count must be non-negative and finite")

// Amount pairs a raw byte count with a display unit. The zero value is
// zero bytes. An Amount is immutable once constructed.
type Amount struct {
	bytes float64
	unit  Unit
}

// New creates an Amount with an explicitly chosen unit. Unlike
// AutoDetect, the scaled quantity may be smaller than 1.
func New(bytes float64, unit Unit) (Amount, error) {
	if !validBytes(bytes) || !unit.valid() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{bytes: bytes, unit: unit}, nil
}

// AutoDetect creates an Amount using the largest unit for which the
// scaled quantity is at least 1. Byte counts below one kilobyte,
// including zero, select the base unit.
func AutoDetect(bytes float64) (Amount, error) {
	if !validBytes(bytes) {
		return Amount{}, ErrInvalidAmount
	}
	unit := Byte
	for u := Terabyte; u > Byte; u-- {
		if bytes >= ladder[u].magnitude {
			unit = u
			break
		}
	}
	return Amount{bytes: bytes, unit: unit}, nil
}

// FromBytes returns the auto-detected Amount for an integer byte count.
// Negative counts clamp to zero, so it never fails; callers with
// possibly-invalid float input should use AutoDetect instead.
func FromBytes(b int64) Amount {
	if b < 0 {
		b = 0
	}
	a, _ := AutoDetect(float64(b))
	return a
}

// validBytes rejects NaN via the >= comparison.
func validBytes(bytes float64) bool {
	return bytes >= 0 && !math.IsInf(bytes, 1)
}

// Bytes returns the raw byte count.
func (a Amount) Bytes() float64 {
	return a.bytes
}

// Quantity returns the byte count scaled to the display unit.
func (a Amount) Quantity() float64 {
	return a.bytes / a.unit.Magnitude()
}

// Unit returns the display unit selected for this amount.
func (a Amount) Unit() Unit {
	return a.unit
}

// Format renders the amount with the given number of decimal places,
// e.g. Format(2) on 32768 bytes yields "32.00 Kb".
func (a Amount) Format(prec int) string {
	return strconv.FormatFloat(a.Quantity(), 'f', prec, 64) + " " + a.unit.Label()
}

// String renders the amount with one decimal place, e.g. "32.0 Kb".
func (a Amount) String() string {
	return a.Format(1)
}
