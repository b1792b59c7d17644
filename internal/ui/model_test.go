package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/basket/tgt/internal/actionbus"
	"github.com/basket/tgt/internal/config"
	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/openchatstore"
	"github.com/basket/tgt/internal/tgclient"
	"github.com/basket/tgt/internal/tgids"
)

func newTestModel() Model {
	bus := actionbus.New()
	cache := domaincache.New()
	open := openchatstore.New()
	client := tgclient.NewMock()
	return New(context.Background(), bus, cache, open, client, nil, nil, config.AppConfig{
		ChatListWidthPercent: 30, ChatListMinWidth: 20, SmallAreaWidthThreshold: 80, PromptMinHeight: 3,
	}, config.DefaultKeymap(), config.ThemeConfig{Name: "default"}, config.ThemeNames())
}

func TestTranslateKeymapKeyMapsQuit(t *testing.T) {
	m := newTestModel()
	a := m.translateKeymapKey("ctrl+c")
	if a.Kind != actionbus.Quit {
		t.Fatalf("translateKeymapKey(ctrl+c).Kind = %v, want Quit", a.Kind)
	}
}

func TestTranslateKeymapKeyUnboundFallsBackToRawKey(t *testing.T) {
	m := newTestModel()
	a := m.translateKeymapKey("z")
	if a.Kind != actionbus.Key || a.KeyCode != "z" {
		t.Fatalf("translateKeymapKey(z) = %+v, want Key{z}", a)
	}
}

func TestApplyActionResizeRecomputesLayout(t *testing.T) {
	m := newTestModel()
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.Resize, Width: 100, Height: 30})
	mm := updated.(Model)
	if mm.layout.TitleBar.W != 100 {
		t.Fatalf("layout.TitleBar.W = %d, want 100", mm.layout.TitleBar.W)
	}
}

func TestApplyActionShowPopupMovesFocus(t *testing.T) {
	m := newTestModel()
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.ShowPopup, Popup: actionbus.PopupCommandGuide})
	mm := updated.(Model)
	if !mm.popup.IsOpen() || mm.focus != FocusPopup {
		t.Fatalf("ShowPopup should open popup and move focus, got open=%v focus=%v", mm.popup.IsOpen(), mm.focus)
	}
}

func TestApplyActionHidePopupRestoresChatListFocus(t *testing.T) {
	m := newTestModel()
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.ShowPopup, Popup: actionbus.PopupThemeSelector})
	mm := updated.(Model)
	updated, _ = mm.applyAction(actionbus.Action{Kind: actionbus.HidePopup})
	mm = updated.(Model)
	if mm.popup.IsOpen() || mm.focus != FocusChatList {
		t.Fatalf("HidePopup should close popup and restore chat list focus, got open=%v focus=%v", mm.popup.IsOpen(), mm.focus)
	}
}

func TestApplyActionChatListNavigationClampsAtBounds(t *testing.T) {
	m := newTestModel()
	m.chats = []domaincache.ChatListEntry{{}, {}, {}}
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.ChatListPrevious})
	mm := updated.(Model)
	if mm.selectedChat != 0 {
		t.Fatalf("selectedChat = %d, want clamped to 0", mm.selectedChat)
	}
	for i := 0; i < 5; i++ {
		updated, _ = mm.applyAction(actionbus.Action{Kind: actionbus.ChatListNext})
		mm = updated.(Model)
	}
	if mm.selectedChat != len(mm.chats)-1 {
		t.Fatalf("selectedChat = %d, want clamped to %d", mm.selectedChat, len(mm.chats)-1)
	}
}

func TestApplyActionKeyAppendsToPromptWhenFocused(t *testing.T) {
	m := newTestModel()
	m.focus = FocusPrompt
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.Key, KeyCode: "h"})
	mm := updated.(Model)
	if string(mm.promptInput) != "h" {
		t.Fatalf("promptInput = %q, want %q", string(mm.promptInput), "h")
	}
}

func TestApplyActionSendMessageClearsPrompt(t *testing.T) {
	m := newTestModel()
	m.focus = FocusPrompt
	m.promptInput = []rune("hello")
	m.promptCursor = 5
	updated, _ := m.applyAction(actionbus.Action{Kind: actionbus.SendMessage, Text: "hello"})
	mm := updated.(Model)
	if len(mm.promptInput) != 0 || mm.promptCursor != 0 {
		t.Fatalf("SendMessage should clear the prompt, got %q cursor=%d", string(mm.promptInput), mm.promptCursor)
	}
}

func TestApplyActionSendMessageCallsClient(t *testing.T) {
	m := newTestModel()
	mock := m.client.(*tgclient.Mock)
	m.open.SetOpenChatID(42)
	m.promptInput = []rune("hi there")
	primeBus(m.bus)
	_, cmd := m.applyAction(actionbus.Action{Kind: actionbus.SendMessage, Text: "hi there"})
	drainBatch(cmd)
	if !containsCall(mock.Calls, "send_message") {
		t.Fatalf("Calls = %v, want send_message", mock.Calls)
	}
}

func TestApplyActionGetChatHistoryRespectsSingleFlight(t *testing.T) {
	m := newTestModel()
	mock := m.client.(*tgclient.Mock)
	m.open.SetOpenChatID(7)
	m.open.BeginLoadOlder()
	primeBus(m.bus)
	_, cmd := m.applyAction(actionbus.Action{Kind: actionbus.GetChatHistory})
	drainBatch(cmd)
	if containsCall(mock.Calls, "get_chat_history") {
		t.Fatalf("a second load-older request should have been dropped, got %v", mock.Calls)
	}
	m.open.EndLoadOlder()
	primeBus(m.bus)
	_, cmd = m.applyAction(actionbus.Action{Kind: actionbus.GetChatHistory})
	drainBatch(cmd)
	if !containsCall(mock.Calls, "get_chat_history") {
		t.Fatalf("Calls = %v, want get_chat_history once the gate is free", mock.Calls)
	}
}

func TestApplyActionDeleteMessagesCallsClient(t *testing.T) {
	m := newTestModel()
	mock := m.client.(*tgclient.Mock)
	primeBus(m.bus)
	_, cmd := m.applyAction(actionbus.Action{Kind: actionbus.DeleteMessages, ChatID: 9, MessageIDs: []tgids.MessageId{100}, Revoke: true})
	drainBatch(cmd)
	if !containsCall(mock.Calls, "delete_messages") {
		t.Fatalf("Calls = %v, want delete_messages", mock.Calls)
	}
}

// primeBus queues one throwaway action so waitForAction's blocking Recv
// returns immediately instead of stalling the test goroutine.
func primeBus(bus *actionbus.Bus) {
	bus.Send(actionbus.Action{Kind: actionbus.Render})
}

// drainBatch runs every leaf tea.Cmd produced by a (possibly nested)
// tea.BatchMsg, the way the bubbletea runtime would, so client calls made
// on a Telegram-op's tea.Cmd are observable synchronously in a test.
func drainBatch(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return
	}
	for _, c := range batch {
		drainBatch(c)
	}
}

func containsCall(calls []string, want string) bool {
	for _, c := range calls {
		if c == want {
			return true
		}
	}
	return false
}

func TestInitReturnsBatchedCommand(t *testing.T) {
	m := newTestModel()
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() returned nil command")
	}
	msg := cmd()
	if _, ok := msg.(tea.BatchMsg); !ok {
		t.Fatalf("Init() command produced %T, want tea.BatchMsg", msg)
	}
}
