package ui

import (
	"testing"

	"github.com/basket/tgt/internal/config"
)

func TestResolveUnknownThemeFallsBackToDefault(t *testing.T) {
	th := Resolve(config.ThemeConfig{Name: "nonexistent"})
	want := Resolve(config.ThemeConfig{Name: "default"})
	if th.TitleBar.Render("x") != want.TitleBar.Render("x") {
		t.Fatal("unknown theme name should resolve to the default palette")
	}
}

func TestResolveOverrideReplacesSingleRole(t *testing.T) {
	th := Resolve(config.ThemeConfig{Name: "default", Overrides: map[string]string{"unread_badge": "201"}})
	base := Resolve(config.ThemeConfig{Name: "default"})
	if th.UnreadBadge.Render("x") == base.UnreadBadge.Render("x") {
		t.Fatal("override should change the rendered style")
	}
	if th.TitleBar.Render("x") != base.TitleBar.Render("x") {
		t.Fatal("override of one role should not affect another")
	}
}
