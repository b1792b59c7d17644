package config

// DefaultKeymap returns the built-in key bindings, keyed by action name
// matching internal/actionbus.Kind.String(). Loaded config values take
// precedence; any action missing from the user's keymap falls back here.
func DefaultKeymap() KeymapConfig {
	return KeymapConfig{
		"quit":                  "ctrl+c",
		"try_quit":              "q",
		"chat_list_next":        "down",
		"chat_list_previous":    "up",
		"chat_list_open":        "enter",
		"chat_list_unselect":    "esc",
		"chat_window_next":      "down",
		"chat_window_previous":  "up",
		"chat_window_copy":      "ctrl+y",
		"chat_window_edit":      "ctrl+e",
		"chat_window_delete_me": "ctrl+d",
		"show_command_guide":    "?",
		"show_theme_selector":   "ctrl+t",
		"show_search_overlay":   "ctrl+f",
		"hide_popup":            "esc",
		"send_message":          "enter",
		"view_all_messages":     "ctrl+a",
		"load_older_messages":   "pgup",
		"focus_chat_list":       "tab",
		"focus_prompt":          "shift+tab",
	}
}
