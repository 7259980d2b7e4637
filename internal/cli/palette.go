package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

func newPaletteCmd() *cobra.Command {
	var (
		mode     string
		modifier string
		asJSON   bool
		copyCSS  bool
	)

	cmd := &cobra.Command{
		Use:   "palette <color>",
		Short: "Generate a theme palette from a color",
		Long: "Generate the ten-role palette for a CSS color name, #hex or rgb(r, g, b) value. " +
			"Colors that would be unreadable in the chosen mode are rejected.",
		Example: "  launchpad palette teal --mode light\n  launchpad palette '#3366cc' --modifier vibrant --json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := palette.Request{
				Color:    palette.ParseSpec(strings.Join(args, " ")),
				Mode:     palette.ParseMode(mode),
				Modifier: palette.ParseModifier(modifier),
			}
			theme, err := req.Build()
			if err != nil {
				return err
			}

			if copyCSS {
				if err := clipboard.WriteAll(cssBlock(theme)); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "clipboard unavailable: %v\n", err)
				} else {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Copied CSS variables to clipboard.")
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					palette.Theme
					Variables map[string]string `json:"variables"`
				}{theme, theme.Palette.CSSVariables()})
			}
			renderTheme(cmd.OutOrStdout(), req, theme)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(palette.Dark), "luminance mode: dark or light")
	cmd.Flags().StringVar(&modifier, "modifier", "", "vibrant, pastel, neon or bold")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the theme as JSON")
	cmd.Flags().BoolVar(&copyCSS, "copy", false, "copy the CSS variables to the clipboard")
	return cmd
}

var (
	labelStyle = lipgloss.NewStyle().Width(18)
	hexStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

func renderTheme(out io.Writer, req palette.Request, t palette.Theme) {
	base, _ := palette.Resolve(req.Color)
	primary := palette.MustParseHex(t.Palette[palette.Primary])

	title := fmt.Sprintf("%s  (%s mode, base %s, hsl %s, contrast %.2f)",
		t.Name, t.Mode, base.Hex(), palette.ToHSL(base).Rounded(),
		palette.ContrastRatio(primary, palette.BackgroundAnchor(t.Mode)))

	rows := []string{titleStyle.Render(title)}
	for _, role := range palette.Roles {
		hex := t.Palette[role]
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(hex)).
			Foreground(lipgloss.Color(t.Palette[palette.ButtonText])).
			Padding(0, 2).
			Render("  ")
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			swatch, " ", labelStyle.Render(string(role)), hexStyle.Render(hex)))
	}
	_, _ = fmt.Fprintln(out, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// cssBlock renders the theme as a :root rule.
func cssBlock(t palette.Theme) string {
	vars := t.Palette.CSSVariables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %s;\n", name, vars[name])
	}
	b.WriteString("}\n")
	return b.String()
}
