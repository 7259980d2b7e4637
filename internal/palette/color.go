package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit-per-channel sRGB color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL holds hue in degrees [0,360) and saturation/lightness in percent [0,100].
// Values keep full precision so conversions round-trip; use Rounded for display.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Rounded returns the integer-degree hue with one decimal of saturation and lightness.
func (c HSL) Rounded() HSL {
	h := math.Mod(math.Round(c.H), 360)
	return HSL{
		H: h,
		S: math.Round(c.S*10) / 10,
		L: math.Round(c.L*10) / 10,
	}
}

func (c HSL) String() string {
	r := c.Rounded()
	return fmt.Sprintf("hsl(%.0f, %.1f%%, %.1f%%)", r.H, r.S, r.L)
}

// Hex encodes the color as lowercase #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string { return c.Hex() }

// Scale multiplies every channel by f, clamping to [0,255].
func (c RGB) Scale(f float64) RGB {
	return RGB{R: scaleChannel(c.R, f), G: scaleChannel(c.G, f), B: scaleChannel(c.B, f)}
}

func scaleChannel(v uint8, f float64) uint8 {
	return uint8(math.Round(clamp(float64(v)*f, 0, 255)))
}

// ParseHex parses 3- or 6-digit hex colors, with or without a leading '#'.
// Three-digit forms duplicate each digit ("#abc" == "#aabbcc").
func ParseHex(s string) (RGB, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// MustParseHex is ParseHex for compile-time constants.
func MustParseHex(s string) RGB {
	c, ok := ParseHex(s)
	if !ok {
		panic("palette: invalid hex color " + s)
	}
	return c
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ToHSL converts sRGB to HSL.
func ToHSL(c RGB) HSL {
	h, s, l := c.colorful().Hsl()
	return HSL{H: math.Mod(h, 360), S: s * 100, L: l * 100}
}

// ToRGB converts HSL to sRGB, rounding each channel.
func ToRGB(c HSL) RGB {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsl(h, clamp(c.S, 0, 100)/100, clamp(c.L, 0, 100)/100))
}

// RelativeLuminance is the WCAG 2.x relative luminance of c, in [0,1].
func RelativeLuminance(c RGB) float64 {
	r, g, b := c.colorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio is the WCAG contrast ratio between a and b, in [1,21].
func ContrastRatio(a, b RGB) float64 {
	l1 := RelativeLuminance(a) + 0.05
	l2 := RelativeLuminance(b) + 0.05
	return math.Max(l1, l2) / math.Min(l1, l2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
