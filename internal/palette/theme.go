package palette

import (
	"fmt"
	"strings"
)

// DefaultThemeName is the built-in theme shipped with the launcher.
const DefaultThemeName = "Rabbit"

// customPrefix marks theme names generated from a user color.
const customPrefix = "custom:"

// Theme is the persisted representation of the active theme.
type Theme struct {
	Name    string  `json:"name"`
	Palette Palette `json:"palette"`
	Mode    Mode    `json:"mode"`
}

var defaultPalettes = map[Mode]Palette{
	Dark: {
		Primary:          "#ff7043",
		Secondary:        "#ff7043",
		Background:       "#000000",
		HeaderBackground: "#000000",
		Surface:          "#1c1c1c",
		SurfaceHover:     "#2c2c2c",
		Border:           "#2a2a2a",
		ForegroundText:   "#e0e0e0",
		Icon:             "#7a7a7a",
		ButtonText:       "#ffffff",
	},
	Light: {
		Primary:          "#ff7043",
		Secondary:        "#ff7043",
		Background:       "#f9f9f9",
		HeaderBackground: "#f9f9f9",
		Surface:          "#ffffff",
		SurfaceHover:     "#f0f0f0",
		Border:           "#e0e0e0",
		ForegroundText:   "#1c1c1c",
		Icon:             "#5c5c5c",
		ButtonText:       "#ffffff",
	},
}

// DefaultTheme returns the built-in theme for mode.
func DefaultTheme(mode Mode) Theme {
	mode = ParseMode(string(mode))
	return Theme{
		Name:    DefaultThemeName,
		Palette: defaultPalettes[mode].Clone(),
		Mode:    mode,
	}
}

// Request is a user's theme choice before generation.
type Request struct {
	Color    ColorSpec `json:"color"`
	Mode     Mode      `json:"mode"`
	Modifier Modifier  `json:"modifier,omitempty"`
}

// Build generates the palette for r and wraps it in a named Theme.
func (r Request) Build() (Theme, error) {
	mode := ParseMode(string(r.Mode))
	modifier := ParseModifier(string(r.Modifier))
	p, err := Generate(r.Color, mode, modifier)
	if err != nil {
		return Theme{}, err
	}
	return Theme{Name: ThemeName(r.Color, modifier), Palette: p, Mode: mode}, nil
}

// ThemeName encodes a generated theme as "custom:<color>[:<modifier>]".
func ThemeName(spec ColorSpec, m Modifier) string {
	name := customPrefix + strings.ReplaceAll(spec.String(), " ", "")
	if m != ModifierNone {
		name += ":" + string(m)
	}
	return name
}

// ParseThemeName decodes a name produced by ThemeName. ok is false for
// built-in or unknown names.
func ParseThemeName(name string) (spec ColorSpec, m Modifier, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(name), customPrefix)
	if !found || rest == "" {
		return ColorSpec{}, ModifierNone, false
	}
	color := rest
	if i := strings.LastIndex(rest, ":"); i > 0 {
		color, m = rest[:i], ParseModifier(rest[i+1:])
	}
	return ParseSpec(color), m, true
}

// Valid reports whether the theme carries a complete palette.
func (t Theme) Valid() error {
	if t.Name == "" {
		return fmt.Errorf("%w: theme has no name", ErrIncomplete)
	}
	return t.Palette.Validate()
}

var cssVariables = map[Role]string{
	Primary:          "--primary-color",
	Secondary:        "--secondary-color",
	Background:       "--bg-color",
	HeaderBackground: "--header-bg-color",
	Surface:          "--item-bg",
	SurfaceHover:     "--item-bg-hover",
	Border:           "--border-color",
	ForegroundText:   "--font-color",
	Icon:             "--icon-color",
	ButtonText:       "--button-font-color",
}

// CSSVariables renders the palette as the stylesheet custom properties the
// presentation layer applies.
func (p Palette) CSSVariables() map[string]string {
	out := make(map[string]string, len(p))
	for role, v := range p {
		if name, ok := cssVariables[role]; ok {
			out[name] = v
		}
	}
	return out
}

// FromCSSVariables accepts either role keys or stylesheet property names and
// returns a palette with normalised lowercase colors. Unknown keys are ignored.
func FromCSSVariables(vars map[string]string) Palette {
	byVar := make(map[string]Role, len(cssVariables))
	for role, name := range cssVariables {
		byVar[name] = role
	}
	p := make(Palette, len(Roles))
	for k, v := range vars {
		role, ok := byVar[k]
		if !ok {
			if _, known := cssVariables[Role(k)]; !known {
				continue
			}
			role = Role(k)
		}
		if c, ok := ParseHex(v); ok {
			p[role] = c.Hex()
		}
	}
	return p
}
