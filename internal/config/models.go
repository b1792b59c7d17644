package config

// ThemeNames lists the built-in themes offered by the theme selector popup.
// A user's ThemeConfig.Name may also name a theme defined entirely through
// Overrides.
func ThemeNames() []string {
	return []string{"default", "dark", "light", "solarized", "high-contrast"}
}
