package palette

import (
	"errors"
	"fmt"
	"math"
)

// Role is a semantic slot of the UI palette.
type Role string

const (
	Primary          Role = "primary"
	Secondary        Role = "secondary"
	Background       Role = "background"
	HeaderBackground Role = "header-background"
	Surface          Role = "surface"
	SurfaceHover     Role = "surface-hover"
	Border           Role = "border"
	ForegroundText   Role = "foreground-text"
	Icon             Role = "icon"
	ButtonText       Role = "button-text"
)

// Roles is the fixed role set every palette must cover.
var Roles = []Role{
	Primary, Secondary, Background, HeaderBackground, Surface,
	SurfaceHover, Border, ForegroundText, Icon, ButtonText,
}

var (
	ErrInvalidColor    = errors.New("color not recognised")
	ErrPaletteRejected = errors.New("palette rejected")
	ErrPaletteTooDark  = fmt.Errorf("%w: color is too dark to read on a dark background", ErrPaletteRejected)
	ErrPaletteTooLight = fmt.Errorf("%w: color is too light to read on a light background", ErrPaletteRejected)
	ErrIncomplete      = errors.New("palette is incomplete")
)

// MinPrimaryContrast is the lowest accepted contrast ratio between the primary
// color and the mode's background anchor.
const MinPrimaryContrast = 1.5

// lightForegroundContrast is the primary/background contrast above which a
// light foreground is preferred regardless of mode.
const lightForegroundContrast = 3.5

// Palette maps each Role to a lowercase #rrggbb color.
type Palette map[Role]string

// Validate reports whether every role is present and holds a 6-digit hex color.
func (p Palette) Validate() error {
	for _, role := range Roles {
		v, ok := p[role]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrIncomplete, role)
		}
		if len(v) != 7 || v[0] != '#' {
			return fmt.Errorf("%w: %s=%q is not #rrggbb", ErrIncomplete, role, v)
		}
		if _, ok := ParseHex(v); !ok {
			return fmt.Errorf("%w: %s=%q is not #rrggbb", ErrIncomplete, role, v)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type modeAnchors struct {
	background RGB
	border     RGB
	icon       RGB
	foreground RGB
	// light mode uses fixed surfaces; dark mode tints them toward the input hue
	surface      RGB
	surfaceHover RGB
}

var anchors = map[Mode]modeAnchors{
	Dark: {
		background: RGB{8, 8, 8},
		border:     RGB{34, 34, 34},
		icon:       RGB{122, 122, 122},
		foreground: RGB{230, 230, 230},
	},
	Light: {
		background:   RGB{250, 250, 250},
		border:       RGB{224, 224, 224},
		icon:         RGB{92, 92, 92},
		foreground:   RGB{28, 28, 28},
		surface:      RGB{255, 255, 255},
		surfaceHover: RGB{245, 245, 245},
	},
}

var (
	lightForeground = RGB{230, 230, 230}
	buttonText      = RGB{255, 255, 255}
)

// BackgroundAnchor returns the fixed background color of a mode.
func BackgroundAnchor(mode Mode) RGB {
	return anchors[ParseMode(string(mode))].background
}

// Generate derives a complete palette from one color, a mode and a modifier.
// It fails with ErrInvalidColor when the color does not resolve, and with
// ErrPaletteTooDark or ErrPaletteTooLight when the primary color would not be
// readable against the mode's background.
func Generate(spec ColorSpec, mode Mode, modifier Modifier) (Palette, error) {
	base, ok := Resolve(spec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, spec.String())
	}

	mode = ParseMode(string(mode))
	modifier = ParseModifier(string(modifier))
	a := anchors[mode]

	hsl := ApplyModifier(ToHSL(base), modifier)
	primary := ToRGB(hsl)

	contrast := ContrastRatio(primary, a.background)
	if contrast < MinPrimaryContrast {
		gate := ErrPaletteTooDark
		if mode == Light {
			gate = ErrPaletteTooLight
		}
		return nil, fmt.Errorf("%w (contrast %.2f, need %.1f)", gate, contrast, MinPrimaryContrast)
	}

	surface, hover := a.surface, a.surfaceHover
	if mode == Dark {
		surface, hover = tintedSurfaces(hsl)
	}

	foreground := a.foreground
	if contrast > lightForegroundContrast {
		foreground = lightForeground
	}

	return Palette{
		Primary:          primary.Hex(),
		Secondary:        primary.Scale(0.85).Hex(),
		Background:       a.background.Hex(),
		HeaderBackground: a.background.Hex(),
		Surface:          surface.Hex(),
		SurfaceHover:     hover.Hex(),
		Border:           a.border.Hex(),
		ForegroundText:   foreground.Hex(),
		Icon:             a.icon.Hex(),
		ButtonText:       buttonText.Hex(),
	}, nil
}

// tintedSurfaces keeps a hint of the primary hue in dark surfaces. Lightness
// bands do not overlap so the hover state is always distinguishable.
func tintedSurfaces(c HSL) (surface, hover RGB) {
	surface = ToRGB(HSL{
		H: c.H,
		S: math.Max(6, c.S*0.12),
		L: clamp(c.L*0.6, 8, 18),
	})
	hover = ToRGB(HSL{
		H: c.H,
		S: math.Max(6, c.S*0.15),
		L: clamp(c.L*0.75, 20, 28),
	})
	return surface, hover
}
