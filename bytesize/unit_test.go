package bytesize

import "testing"

func TestUnitLabel(t *testing.T) {
	tests := []struct {
		unit  Unit
		label string
	}{
		{Byte, "b"},
		{Kilobyte, "Kb"},
		{Megabyte, "Mb"},
		{Gigabyte, "Gb"},
		{Terabyte, "Tb"},
		{Unit(99), "Unit(99)"},
	}

	for _, tt := range tests {
		if got := tt.unit.Label(); got != tt.label {
			t.Errorf("Unit(%d).Label() = %q, want %q", int(tt.unit), got, tt.label)
		}
	}
}

func TestUnitMagnitude(t *testing.T) {
	tests := []struct {
		unit      Unit
		magnitude float64
	}{
		{Byte, 1},
		{Kilobyte, 1024},
		{Megabyte, 1024 * 1024},
		{Gigabyte, 1024 * 1024 * 1024},
		{Terabyte, 1024 * 1024 * 1024 * 1024},
	}

	for _, tt := range tests {
		if got := tt.unit.Magnitude(); got != tt.magnitude {
			t.Errorf("%s.Magnitude() = %v, want %v", tt.unit, got, tt.magnitude)
		}
	}
}

func TestUnitOrdering(t *testing.T) {
	units := []Unit{Byte, Kilobyte, Megabyte, Gigabyte, Terabyte}
	for i := 1; i < len(units); i++ {
		prev, cur := units[i-1], units[i]
		if cur.Magnitude() != prev.Magnitude()*1024 {
			t.Errorf("%s.Magnitude() = %v, want 1024 * %s", cur, cur.Magnitude(), prev)
		}
	}
}

func TestUnitString(t *testing.T) {
	if got := Kilobyte.String(); got != "Kb" {
		t.Errorf("Kilobyte.String() = %q, want %q", got, "Kb")
	}
}
