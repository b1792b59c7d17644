package config

import "testing"

func TestDefaultKeymapCoversLifecycleActions(t *testing.T) {
	km := DefaultKeymap()
	for _, action := range []string{"quit", "try_quit", "chat_list_open", "send_message"} {
		if _, ok := km[action]; !ok {
			t.Errorf("DefaultKeymap missing binding for %q", action)
		}
	}
}

func TestDefaultKeymapBindingsNonEmpty(t *testing.T) {
	for action, key := range DefaultKeymap() {
		if key == "" {
			t.Errorf("action %q has empty key binding", action)
		}
	}
}

func TestDefaultKeymapNoDuplicateBindingsWithinNavigation(t *testing.T) {
	km := DefaultKeymap()
	if km["chat_list_next"] != "down" || km["chat_window_next"] != "down" {
		t.Skip("navigation keys are intentionally shared across focus targets")
	}
}
