package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/image/colornames"
)

// Kind tags a ColorSpec.
type Kind string

const (
	KindName Kind = "name"
	KindHex  Kind = "hex"
	KindRGB  Kind = "rgb"
)

// ColorSpec is a user color choice: a CSS color name, a hex string or an RGB triple.
// On the wire the triple is {"kind":"rgb","value":[r,g,b]}.
type ColorSpec struct {
	Kind  Kind
	Value string
	RGB   RGB
}

// wireSpec is the JSON shape of a ColorSpec. The "rgb" object is the shape
// older stored themes used.
type wireSpec struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
	RGB   *RGB            `json:"rgb,omitempty"`
}

func NameSpec(name string) ColorSpec { return ColorSpec{Kind: KindName, Value: name} }
func HexSpec(hex string) ColorSpec   { return ColorSpec{Kind: KindHex, Value: hex} }
func RGBSpec(c RGB) ColorSpec        { return ColorSpec{Kind: KindRGB, RGB: c} }

var (
	hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
)

// ParseSpec guesses the kind of free-form user input.
// "#abc", "abc123" and "rgb(1,2,3)" are recognised, anything else is a name.
func ParseSpec(input string) ColorSpec {
	s := strings.TrimSpace(input)
	if m := rgbPattern.FindStringSubmatch(strings.ToLower(s)); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r <= 255 && g <= 255 && b <= 255 {
			return RGBSpec(RGB{R: uint8(r), G: uint8(g), B: uint8(b)})
		}
	}
	if hexPattern.MatchString(s) {
		return HexSpec(s)
	}
	return NameSpec(s)
}

func (s ColorSpec) String() string {
	switch s.Kind {
	case KindRGB:
		return fmt.Sprintf("rgb(%d, %d, %d)", s.RGB.R, s.RGB.G, s.RGB.B)
	default:
		return s.Value
	}
}

func (s ColorSpec) MarshalJSON() ([]byte, error) {
	var value any = s.Value
	if s.Kind == KindRGB {
		value = [3]int{int(s.RGB.R), int(s.RGB.G), int(s.RGB.B)}
	}
	return json.Marshal(struct {
		Kind  Kind `json:"kind"`
		Value any  `json:"value"`
	}{s.Kind, value})
}

// UnmarshalJSON accepts the tagged object, a bare string parsed with
// ParseSpec, and the older {"kind":"rgb","rgb":{"r":..}} form.
func (s *ColorSpec) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = ParseSpec(raw)
		return nil
	}

	var w wireSpec
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := ColorSpec{Kind: w.Kind}
	if w.Kind == KindRGB {
		switch {
		case len(w.Value) > 0 && w.Value[0] == '[':
			var triple []int
			if err := json.Unmarshal(w.Value, &triple); err != nil {
				return fmt.Errorf("rgb value: %w", err)
			}
			if len(triple) != 3 {
				return fmt.Errorf("rgb value: want 3 channels, got %d", len(triple))
			}
			for _, c := range triple {
				if c < 0 || c > 255 {
					return fmt.Errorf("rgb value: channel %d out of range", c)
				}
			}
			out.RGB = RGB{R: uint8(triple[0]), G: uint8(triple[1]), B: uint8(triple[2])}
		case w.RGB != nil:
			out.RGB = *w.RGB
		default:
			return errors.New("rgb value: missing channels")
		}
		*s = out
		return nil
	}
	if len(w.Value) > 0 {
		if err := json.Unmarshal(w.Value, &out.Value); err != nil {
			return fmt.Errorf("%s value: %w", w.Kind, err)
		}
	}
	*s = out
	return nil
}

// Resolve turns a ColorSpec into RGB. It returns false when the name or hex is unknown.
func Resolve(spec ColorSpec) (RGB, bool) {
	switch spec.Kind {
	case KindRGB:
		return spec.RGB, true
	case KindHex:
		return ParseHex(spec.Value)
	case KindName:
		return lookupName(spec.Value)
	default:
		return RGB{}, false
	}
}

func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func lookupName(name string) (RGB, bool) {
	c, ok := colornames.Map[normalizeName(name)]
	if !ok {
		return RGB{}, false
	}
	return RGB{R: c.R, G: c.G, B: c.B}, true
}

// Names returns every recognised color name, sorted.
func Names() []string {
	names := make([]string, 0, len(colornames.Map))
	for name := range colornames.Map {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
