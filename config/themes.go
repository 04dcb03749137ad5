package config

import (
	"strings"

	"github.com/javanhut/ravenvt/grid"
)

// ThemeOption describes an available color theme.
type ThemeOption struct {
	Name  string
	Label string
}

// ThemeOptions lists the built-in themes.
func ThemeOptions() []ThemeOption {
	return []ThemeOption{
		{Name: "raven-blue", Label: "Raven Blue"},
		{Name: "crow-black", Label: "Crow Black"},
		{Name: "magpie-black-white-grey", Label: "Magpie Black/White/Grey"},
		{Name: "catppuccin-mocha", Label: "Catppuccin Mocha"},
	}
}

// ThemeLabel returns the display label for a theme name or one of its
// aliases.
func ThemeLabel(name string) string {
	canonical := grid.PaletteByName(name).Name
	for _, opt := range ThemeOptions() {
		if opt.Name == canonical && IsKnownTheme(name) {
			return opt.Label
		}
	}
	return name
}

// IsKnownTheme reports whether name selects a built-in palette rather than
// falling back to the default one. The empty name selects the default.
func IsKnownTheme(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "raven-blue" {
		return true
	}
	return grid.PaletteByName(name).Name != "raven-blue"
}
