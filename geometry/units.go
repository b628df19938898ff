package geometry

import (
	"strconv"
	"strings"
)

// This file defines unit-safe helpers. Geometry is resolved in CSS pixels;
// the canvas backend works in millimeters and fonts are sized in points.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers, treated as px
	UnitPX                  // CSS pixels (96 per inch)
	UnitPT                  // points (72 per inch)
	UnitMM                  // millimeters
	UnitPercent             // percent of a reference value
)

// Conversion constants between px, pt and mm.
const (
	PxToMM = 25.4 / 96
	MMToPx = 96 / 25.4
	PxToPt = 72.0 / 96
	PtToPx = 96.0 / 72
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Px converts the length to CSS pixels. Percent lengths are resolved against reference.
func (l Length) Px(reference float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MMToPx
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

// ParseLength parses "140", "140px", "10.5pt", "3mm" or "50%" preserving the unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ToMM converts CSS pixels to millimeters.
func ToMM(px float64) float64 { return px * PxToMM }

// ToPt converts CSS pixels to points.
func ToPt(px float64) float64 { return px * PxToPt }
