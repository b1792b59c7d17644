package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/basket/tgt/internal/config"
)

// Theme is the resolved set of lipgloss styles a render pass reaches for.
// Named themes give every role a default color; a ThemeConfig.Overrides
// entry replaces a single role without forking the whole palette.
type Theme struct {
	TitleBar     lipgloss.Style
	StatusBar    lipgloss.Style
	UnreadBadge  lipgloss.Style
	SelectedChat lipgloss.Style
	SenderName   lipgloss.Style
	Timestamp    lipgloss.Style
	PopupBorder  lipgloss.Style
	ErrorText    lipgloss.Style
}

var palettes = map[string]map[string]string{
	"default": {
		"title_bar": "62", "status_bar": "240", "unread_badge": "86",
		"selected_chat": "62", "sender_name": "252", "timestamp": "240",
		"popup_border": "62", "error_text": "196",
	},
	"dark": {
		"title_bar": "57", "status_bar": "238", "unread_badge": "82",
		"selected_chat": "57", "sender_name": "253", "timestamp": "242",
		"popup_border": "57", "error_text": "203",
	},
	"light": {
		"title_bar": "25", "status_bar": "250", "unread_badge": "28",
		"selected_chat": "25", "sender_name": "235", "timestamp": "248",
		"popup_border": "25", "error_text": "160",
	},
	"solarized": {
		"title_bar": "33", "status_bar": "241", "unread_badge": "136",
		"selected_chat": "33", "sender_name": "244", "timestamp": "240",
		"popup_border": "33", "error_text": "160",
	},
	"high-contrast": {
		"title_bar": "15", "status_bar": "15", "unread_badge": "226",
		"selected_chat": "15", "sender_name": "15", "timestamp": "7",
		"popup_border": "15", "error_text": "9",
	},
}

// Resolve builds a Theme from the named base palette plus any per-role
// overrides in cfg.
func Resolve(cfg config.ThemeConfig) Theme {
	roles := make(map[string]string, len(palettes["default"]))
	base, ok := palettes[cfg.Name]
	if !ok {
		base = palettes["default"]
	}
	for k, v := range base {
		roles[k] = v
	}
	for k, v := range cfg.Overrides {
		roles[k] = v
	}

	color := func(role string) lipgloss.Color { return lipgloss.Color(roles[role]) }
	return Theme{
		TitleBar:     lipgloss.NewStyle().Bold(true).Foreground(color("title_bar")),
		StatusBar:    lipgloss.NewStyle().Foreground(color("status_bar")),
		UnreadBadge:  lipgloss.NewStyle().Bold(true).Foreground(color("unread_badge")),
		SelectedChat: lipgloss.NewStyle().Foreground(color("selected_chat")).Bold(true),
		SenderName:   lipgloss.NewStyle().Foreground(color("sender_name")),
		Timestamp:    lipgloss.NewStyle().Foreground(color("timestamp")),
		PopupBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(color("popup_border")).Padding(1, 2),
		ErrorText: lipgloss.NewStyle().Foreground(color("error_text")),
	}
}
