package palette

import "strings"

// Modifier is a named saturation/lightness transform layered on the base color.
type Modifier string

const (
	ModifierNone Modifier = ""
	Vibrant      Modifier = "vibrant"
	Pastel       Modifier = "pastel"
	Neon         Modifier = "neon"
	Bold         Modifier = "bold"
)

// Modifiers lists the non-identity modifiers in display order.
var Modifiers = []Modifier{Vibrant, Pastel, Neon, Bold}

// ParseModifier maps unknown values to ModifierNone.
func ParseModifier(s string) Modifier {
	switch m := Modifier(strings.ToLower(strings.TrimSpace(s))); m {
	case Vibrant, Pastel, Neon, Bold:
		return m
	default:
		return ModifierNone
	}
}

// Lightness bounds applied after any modifier so the result never reaches pure black or white.
const (
	minModifiedLightness = 5
	maxModifiedLightness = 95
)

type scaling struct {
	satFactor, satMin, satMax float64
	litFactor, litMin, litMax float64
}

var modifierTable = map[Modifier]scaling{
	Vibrant: {satFactor: 1.25, satMin: 0, satMax: 100, litFactor: 0.95, litMin: 10, litMax: 100},
	Pastel:  {satFactor: 0.6, satMin: 10, satMax: 100, litFactor: 1.08, litMin: 0, litMax: 95},
	Neon:    {satFactor: 1.6, satMin: 0, satMax: 100, litFactor: 1.05, litMin: 0, litMax: 70},
	Bold:    {satFactor: 1.4, satMin: 0, satMax: 100, litFactor: 0.9, litMin: 8, litMax: 100},
}

// ApplyModifier scales saturation and lightness per the modifier table. Hue is untouched.
func ApplyModifier(c HSL, m Modifier) HSL {
	sc, ok := modifierTable[m]
	if !ok {
		return c
	}
	return HSL{
		H: c.H,
		S: clamp(c.S*sc.satFactor, sc.satMin, sc.satMax),
		L: clamp(clamp(c.L*sc.litFactor, sc.litMin, sc.litMax), minModifiedLightness, maxModifiedLightness),
	}
}

// Mode is the luminance regime of the UI.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// ParseMode maps unknown values to Dark.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == Light {
		return Light
	}
	return Dark
}
