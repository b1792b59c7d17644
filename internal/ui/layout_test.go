package ui

import (
	"testing"

	"github.com/basket/tgt/internal/config"
)

func testApp() config.AppConfig {
	return config.AppConfig{
		ChatListWidthPercent:    30,
		ChatListMinWidth:        20,
		SmallAreaWidthThreshold: 80,
		PromptMinHeight:         3,
	}
}

func TestComputeWideLayoutSplitsChatList(t *testing.T) {
	l := Compute(120, 40, testApp())
	if l.SmallArea {
		t.Fatal("120-wide terminal should not be small-area")
	}
	if l.ChatList.W == 0 || l.ChatPane.W == 0 {
		t.Fatalf("expected both panes populated, got %+v / %+v", l.ChatList, l.ChatPane)
	}
	if l.ChatList.W+l.ChatPane.W != 120 {
		t.Fatalf("ChatList.W + ChatPane.W = %d, want 120", l.ChatList.W+l.ChatPane.W)
	}
}

func TestComputeNarrowLayoutCollapsesChatList(t *testing.T) {
	l := Compute(60, 24, testApp())
	if !l.SmallArea {
		t.Fatal("60-wide terminal should be small-area")
	}
	if l.ChatList.W != 0 {
		t.Fatalf("ChatList.W = %d, want 0 in small-area mode", l.ChatList.W)
	}
	if l.ChatPane.W != 60 {
		t.Fatalf("ChatPane.W = %d, want 60", l.ChatPane.W)
	}
}

func TestComputeChatListRespectsMinimumWidth(t *testing.T) {
	app := testApp()
	app.ChatListWidthPercent = 5
	l := Compute(100, 24, app)
	if l.ChatList.W != app.ChatListMinWidth {
		t.Fatalf("ChatList.W = %d, want floor of %d", l.ChatList.W, app.ChatListMinWidth)
	}
}

func TestComputePromptAtLeastMinHeight(t *testing.T) {
	l := Compute(100, 24, testApp())
	if l.Prompt.H < 3 {
		t.Fatalf("Prompt.H = %d, want >= 3", l.Prompt.H)
	}
	if l.Chat.H+l.Prompt.H != l.ChatPane.H {
		t.Fatalf("Chat.H + Prompt.H = %d, want ChatPane.H = %d", l.Chat.H+l.Prompt.H, l.ChatPane.H)
	}
}

func TestComputeBarsPinnedTopAndBottom(t *testing.T) {
	l := Compute(100, 24, testApp())
	if l.TitleBar.Y != 0 || l.TitleBar.H != 1 {
		t.Fatalf("TitleBar = %+v, want Y=0 H=1", l.TitleBar)
	}
	if l.StatusBar.Y != 23 || l.StatusBar.H != 1 {
		t.Fatalf("StatusBar = %+v, want Y=23 H=1", l.StatusBar)
	}
}
