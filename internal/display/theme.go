package display

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/smarthub/internal/domain"
)

// palette is the set of styles one theme renders with.
type palette struct {
	bar       lipgloss.Style
	status    lipgloss.Style
	user      lipgloss.Style
	userLabel lipgloss.Style
	ai        lipgloss.Style
	aiLabel   lipgloss.Style
	speaking  lipgloss.Style
	hint      lipgloss.Style
	urgent    lipgloss.Style
	prompt    lipgloss.Style
	banner    lipgloss.Style
	glamour   string // glamour standard style name
}

var darkPalette = palette{
	bar: lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0")),
	user:      lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d8")),
	userLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")).Bold(true),
	ai:        lipgloss.NewStyle().Foreground(lipgloss.Color("#bae6fd")),
	aiLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7dd3fc")).Bold(true),
	speaking:  lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a")),
	hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")),
	urgent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5")),
	prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
	banner:    lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
	glamour:   "dark",
}

var lightPalette = palette{
	bar: lipgloss.NewStyle().
		Background(lipgloss.Color("#e4e4e7")).
		Foreground(lipgloss.Color("#3f3f46")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")),
	user:      lipgloss.NewStyle().Foreground(lipgloss.Color("#27272a")),
	userLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")).Bold(true),
	ai:        lipgloss.NewStyle().Foreground(lipgloss.Color("#075985")),
	aiLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0369a1")).Bold(true),
	speaking:  lipgloss.NewStyle().Foreground(lipgloss.Color("#b45309")),
	hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")),
	urgent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")),
	prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")),
	banner:    lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")),
	glamour:   "light",
}

// paletteFor maps a theme name to its palette. Unknown names get dark.
func paletteFor(theme string) palette {
	if theme == domain.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// ValidTheme reports whether name is a theme the display knows.
func ValidTheme(name string) bool {
	return name == domain.ThemeDark || name == domain.ThemeLight
}
