package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

// Legacy key names, from every earlier storage layout.
const (
	KeyLuminanceMode       = "launchPadR1LuminanceMode"
	KeyLPLinks             = "lp_links"
	KeyLinks               = "launchPadR1Links"
	KeyFavoriteIDs         = "launchPadR1FavoriteLinkIds"
	KeyFavoriteID          = "launchPadR1FavoriteLinkId"
	KeyFavoriteIndex       = "launchPadR1FavoriteLinkIndex"
	KeyOldView             = "launchPadView"
	KeyView                = "launchPadR1View"
	KeyCollapsedCategories = "launchPadR1CollapsedCategories"
	KeyLPCollapsedMap      = "lp_collapsed_map"
	KeyLPCollapsed         = "lp_collapsed"
	KeyLPCollapsedAll      = "lp_collapsed_all"
	KeyTheme               = "launchPadR1Theme"
	KeyCustomTheme         = "launchPadR1CustomTheme"
	KeyVolume              = "launchPadR1Volume"
	KeyShakeSetting        = "launchPadR1ShakeSetting"
	KeyURLNormalized       = "launchPadR1UrlNormalized_v1"
	KeyLPCategories        = "lp_categories"
)

var (
	// ErrUnexpectedShape is returned when a legacy value does not have the
	// shape its key is known to hold.
	ErrUnexpectedShape = errors.New("unexpected legacy value")
	// ErrUnresolved is returned when a legacy reference points at nothing.
	ErrUnresolved = errors.New("legacy reference cannot be resolved")
)

type handler func(ctx context.Context, p *pass, v Value) (change, error)

// legacyKeys is processed in order. The luminance mode comes first so theme
// coercion knows the mode, lp_categories last so lp_collapsed can read it.
var legacyKeys = []struct {
	key    string
	handle handler
}{
	{KeyLuminanceMode, luminanceMode},
	{KeyLPLinks, mergeLinks(false)},
	{KeyLinks, mergeLinks(true)},
	{KeyFavoriteIDs, favoriteIDs},
	{KeyFavoriteID, favoriteID},
	{KeyFavoriteIndex, favoriteIndex},
	{KeyOldView, view},
	{KeyView, view},
	{KeyCollapsedCategories, collapsed},
	{KeyLPCollapsedMap, collapsed},
	{KeyLPCollapsed, collapsed},
	{KeyLPCollapsedAll, collapsed},
	{KeyTheme, theme},
	{KeyCustomTheme, theme},
	{KeyVolume, volume},
	{KeyShakeSetting, archive},
	{KeyURLNormalized, archive},
	{KeyLPCategories, archive},
}

// LegacyKeys returns every legacy key name in processing order.
func LegacyKeys() []string {
	keys := make([]string, len(legacyKeys))
	for i, k := range legacyKeys {
		keys[i] = k.key
	}
	return keys
}

// change is the effect of one legacy key. Handlers only read the pass; the
// change is applied and persisted by pass.commit.
type change struct {
	links     []legacyLink
	indexed   bool
	favorites []string
	collapsed []string
	mode      palette.Mode
	view      domain.View
	theme     *palette.Theme
	volume    *int

	// archive is stored in the legacy backup under the key name.
	archive json.RawMessage
	// problem is reported without discarding the rest of the change.
	problem error
}

type legacyLink struct {
	link     domain.Link
	legacyID string
	favorite bool
	position int
}

func archive(_ context.Context, _ *pass, v Value) (change, error) {
	return change{archive: v.Backup()}, nil
}

func luminanceMode(_ context.Context, _ *pass, v Value) (change, error) {
	s, _ := v.Text()
	switch m := palette.Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case palette.Dark, palette.Light:
		return change{mode: m}, nil
	default:
		return change{}, fmt.Errorf("%w: luminance mode must be dark or light", ErrUnexpectedShape)
	}
}

func mergeLinks(indexed bool) handler {
	return func(_ context.Context, _ *pass, v Value) (change, error) {
		items, ok := v.Array()
		if !ok {
			return change{}, fmt.Errorf("%w: want an array of links", ErrUnexpectedShape)
		}

		c := change{indexed: indexed}
		var rejected []any
		for i, item := range items {
			ll, ok := parseLegacyLink(item)
			if !ok {
				rejected = append(rejected, item)
				continue
			}
			ll.position = i
			c.links = append(c.links, ll)
		}

		if len(rejected) > 0 {
			c.archive, _ = json.Marshal(rejected)
			c.problem = fmt.Errorf("%w: %d link(s) without a usable url", ErrUnexpectedShape, len(rejected))
		}
		return c, nil
	}
}

// parseLegacyLink accepts every field spelling earlier layouts used.
func parseLegacyLink(item any) (legacyLink, bool) {
	o, ok := item.(map[string]any)
	if !ok {
		return legacyLink{}, false
	}

	l := domain.Link{
		Description: stringField(o, "description", "title", "name"),
		URL:         stringField(o, "url", "href"),
		Category:    stringField(o, "category", "cat"),
	}
	if stringField(o, "launchPref") == string(domain.LaunchExternal) || stringField(o, "launch") == string(domain.LaunchExternal) {
		l.LaunchPref = domain.LaunchExternal
	}
	l, err := l.Normalize()
	if err != nil {
		return legacyLink{}, false
	}

	ll := legacyLink{
		link:     l,
		favorite: Value{Kind: Parsed, Data: o["favorite"]}.Truthy(),
	}
	for _, k := range []string{"id", "linkId", "_id"} {
		if id, ok := idString(o[k]); ok {
			ll.legacyID = id
			break
		}
	}
	if ll.legacyID != "" {
		ll.link.ID = ll.legacyID
	} else {
		ll.link.ID = domain.StableLinkID(l.URL)
	}
	return ll, true
}

func favoriteIDs(_ context.Context, _ *pass, v Value) (change, error) {
	items, ok := v.Array()
	if !ok {
		return change{}, fmt.Errorf("%w: want an array of link ids", ErrUnexpectedShape)
	}

	var c change
	var rejected []any
	for _, item := range items {
		if id, ok := idString(item); ok {
			c.favorites = append(c.favorites, id)
		} else {
			rejected = append(rejected, item)
		}
	}
	if len(rejected) > 0 {
		c.archive, _ = json.Marshal(rejected)
		c.problem = fmt.Errorf("%w: %d favorite(s) are not link ids", ErrUnexpectedShape, len(rejected))
	}
	return c, nil
}

func favoriteID(_ context.Context, _ *pass, v Value) (change, error) {
	id, ok := idString(v.Data)
	if v.Kind == Raw {
		id, ok = idString(string(v.Bytes()))
	}
	if !ok {
		return change{}, fmt.Errorf("%w: want a link id", ErrUnexpectedShape)
	}
	return change{favorites: []string{id}}, nil
}

func favoriteIndex(_ context.Context, p *pass, v Value) (change, error) {
	n, ok := v.Number()
	if !ok || n < 0 || n != math.Trunc(n) {
		return change{}, fmt.Errorf("%w: want a link position", ErrUnexpectedShape)
	}
	id, ok := p.positions[int(n)]
	if !ok {
		return change{}, fmt.Errorf("%w: no legacy link at position %d", ErrUnresolved, int(n))
	}
	return change{favorites: []string{id}}, nil
}

func view(_ context.Context, _ *pass, v Value) (change, error) {
	s, _ := v.Text()
	switch vw := domain.View(strings.ToLower(strings.TrimSpace(s))); vw {
	case domain.ViewList, domain.ViewGroup:
		return change{view: vw}, nil
	default:
		return change{}, fmt.Errorf("%w: view must be list or group", ErrUnexpectedShape)
	}
}

// collapsed accepts a category array, a category→bool object, or a boolean
// meaning "every category".
func collapsed(ctx context.Context, p *pass, v Value) (change, error) {
	if o, ok := v.Object(); ok {
		cats := make([]string, 0, len(o))
		for k, val := range o {
			if truthy(val) {
				cats = append(cats, k)
			}
		}
		sort.Strings(cats)
		return change{collapsed: cats}, nil
	}

	if items, ok := v.Array(); ok {
		return change{collapsed: stringsOf(items)}, nil
	}

	switch {
	case v.Truthy():
		return change{collapsed: p.allCategories(ctx)}, nil
	case v.Falsy():
		return change{}, nil
	default:
		return change{}, fmt.Errorf("%w: want categories or a boolean", ErrUnexpectedShape)
	}
}

func theme(_ context.Context, p *pass, v Value) (change, error) {
	var (
		t   palette.Theme
		err error
	)
	if o, ok := v.Object(); ok {
		t, err = themeFromObject(o, p.mode)
	} else if s, ok := v.Text(); ok {
		t, err = themeFromName(s, p.mode)
	} else {
		err = fmt.Errorf("%w: want a theme object or name", ErrUnexpectedShape)
	}
	if err != nil {
		return change{}, err
	}
	return change{theme: &t}, nil
}

// themeFromObject handles stored theme records ({name, palette, mode}) and
// custom theme requests ({baseColor, modifier, mode}).
func themeFromObject(o map[string]any, mode palette.Mode) (palette.Theme, error) {
	if m := stringField(o, "mode"); m != "" {
		mode = palette.ParseMode(m)
	}

	if vars, ok := o["palette"].(map[string]any); ok {
		colors := make(map[string]string, len(vars))
		for k, val := range vars {
			if s, ok := val.(string); ok {
				colors[k] = s
			}
		}
		p := palette.FromCSSVariables(colors)
		if len(p) == 0 {
			return palette.Theme{}, fmt.Errorf("%w: theme palette has no usable colors", ErrUnexpectedShape)
		}
		t := palette.DefaultTheme(mode)
		for role, c := range p {
			t.Palette[role] = c
		}
		if name := stringField(o, "name"); name != "" {
			t.Name = name
		}
		return t, nil
	}

	if color := stringField(o, "baseColor", "color"); color != "" {
		return palette.Request{
			Color:    palette.ParseSpec(color),
			Mode:     mode,
			Modifier: palette.Modifier(stringField(o, "modifier")),
		}.Build()
	}

	if name := stringField(o, "name"); name != "" {
		return themeFromName(name, mode)
	}
	return palette.Theme{}, fmt.Errorf("%w: theme has neither palette nor color", ErrUnexpectedShape)
}

// themeFromName regenerates "custom:<color>[:<modifier>]" names and maps the
// built-in name to the default theme.
func themeFromName(name string, mode palette.Mode) (palette.Theme, error) {
	if spec, mod, ok := palette.ParseThemeName(name); ok {
		return palette.Request{Color: spec, Mode: mode, Modifier: mod}.Build()
	}
	if strings.EqualFold(strings.TrimSpace(name), palette.DefaultThemeName) {
		return palette.DefaultTheme(mode), nil
	}
	if spec := palette.ParseSpec(name); resolvable(spec) {
		return palette.Request{Color: spec, Mode: mode}.Build()
	}
	return palette.Theme{}, fmt.Errorf("%w: unknown theme %q", ErrUnexpectedShape, name)
}

func volume(_ context.Context, _ *pass, v Value) (change, error) {
	n, ok := v.Number()
	if !ok {
		return change{}, fmt.Errorf("%w: volume is not a number", ErrUnexpectedShape)
	}
	vol := domain.ClampVolume(n)
	return change{volume: &vol}, nil
}

// truthy follows the loose truthiness the legacy layouts were written with.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false"
	case nil:
		return false
	default:
		return true
	}
}

func stringsOf(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func resolvable(spec palette.ColorSpec) bool {
	_, ok := palette.Resolve(spec)
	return ok
}
