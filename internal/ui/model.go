package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/basket/tgt/internal/actionbus"
	"github.com/basket/tgt/internal/authfsm"
	"github.com/basket/tgt/internal/config"
	"github.com/basket/tgt/internal/dispatcher"
	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/openchatstore"
	"github.com/basket/tgt/internal/tgclient"
	"github.com/basket/tgt/internal/tgids"
)

// FocusTarget names the component that currently receives raw key input:
// the focused component gets first look at a key, the configured keymap
// is the fallback.
type FocusTarget int

const (
	FocusChatList FocusTarget = iota
	FocusPrompt
	FocusPopup
)

// Model is the component tree's root: it drives layout and is both a
// producer and consumer of the action bus — key presses become Actions it
// sends, and Actions from other goroutines (the dispatcher, PlaybackWorker,
// TgClient completions) arrive back as tea.Msg values the bubbletea
// runtime delivers to Update. Telegram operations themselves run as
// tea.Cmd closures spawned from applyAction so the render loop never
// blocks on network I/O; their results land on *domaincache.Cache and
// *openchatstore.Store directly (both are safe for concurrent use) or, for
// Model's own value-type state, come back through the bus as a StatusMessage
// or searchResultsMsg.
type Model struct {
	ctx context.Context

	bus    *actionbus.Bus
	cache  *domaincache.Cache
	open   *openchatstore.Store
	client tgclient.Client
	fsm    *authfsm.Fsm
	disp   *dispatcher.Dispatcher

	appCfg config.AppConfig
	keymap config.KeymapConfig
	theme  Theme
	popup  Popup

	layout Layout
	focus  FocusTarget

	chats            []domaincache.ChatListEntry
	selectedChat     int
	selectedMessage  int
	editingMessageID tgids.MessageId
	promptInput      []rune
	promptCursor     int
	statusMessage    string
	quitting         bool
}

// actionMsg wraps an Action pulled off the bus so bubbletea can dispatch
// it through the normal Update loop.
type actionMsg struct{ action actionbus.Action }

// searchResultsMsg carries a completed SearchChatMessages response back
// into Update; it bypasses the bus because it targets Model's own popup
// state rather than the shared cache/store.
type searchResultsMsg struct{ results actionbus.SearchResults }

// New builds the initial Model. themeNames seeds the theme selector popup.
func New(ctx context.Context, bus *actionbus.Bus, cache *domaincache.Cache, open *openchatstore.Store, client tgclient.Client, fsm *authfsm.Fsm, disp *dispatcher.Dispatcher, appCfg config.AppConfig, keymap config.KeymapConfig, themeCfg config.ThemeConfig, themeNames []string) Model {
	return Model{
		ctx:              ctx,
		bus:              bus,
		cache:            cache,
		open:             open,
		client:           client,
		fsm:              fsm,
		disp:             disp,
		appCfg:           appCfg,
		keymap:           keymap,
		theme:            Resolve(themeCfg),
		popup:            NewPopup(themeNames),
		focus:            FocusChatList,
		editingMessageID: tgids.MessageIdNone,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForAction(m.bus), sendAction(actionbus.Action{Kind: actionbus.Init}), renderTick(m.appCfg.RenderTickMillis))
}

// renderTick schedules the next Render action, following go-claw's
// tui.tickCmd idiom: a self-rescheduling tea.Tick rather than a background
// ticker goroutine, so the periodic chat-list refresh stays on bubbletea's
// own clock.
func renderTick(millis int) tea.Cmd {
	if millis <= 0 {
		millis = 250
	}
	d := time.Duration(millis) * time.Millisecond
	return tea.Tick(d, func(time.Time) tea.Msg {
		return actionMsg{action: actionbus.Action{Kind: actionbus.Render}}
	})
}

func waitForAction(bus *actionbus.Bus) tea.Cmd {
	return func() tea.Msg {
		a, ok := bus.Recv()
		if !ok {
			return actionMsg{action: actionbus.Action{Kind: actionbus.Quit}}
		}
		return actionMsg{action: a}
	}
}

func sendAction(a actionbus.Action) tea.Cmd {
	return func() tea.Msg { return actionMsg{action: a} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bus.Send(actionbus.Action{Kind: actionbus.Resize, Width: msg.Width, Height: msg.Height})
		return m, waitForAction(m.bus)

	case tea.KeyMsg:
		m.bus.Send(m.translateKey(msg))
		return m, waitForAction(m.bus)

	case actionMsg:
		return m.applyAction(msg.action)

	case searchResultsMsg:
		m.popup.SetSearchResults(msg.results)
		return m, nil
	}
	return m, nil
}

// translateKey maps a terminal key event to an Action, consulting the
// focused component first and the configured keymap otherwise.
func (m Model) translateKey(msg tea.KeyMsg) actionbus.Action {
	key := msg.String()

	if m.popup.IsOpen() {
		return m.translatePopupKey(key)
	}

	switch m.focus {
	case FocusPrompt:
		return m.translatePromptKey(msg, key)
	default:
		return m.translateKeymapKey(key)
	}
}

func (m Model) translatePopupKey(key string) actionbus.Action {
	switch key {
	case "esc":
		return actionbus.Action{Kind: actionbus.HidePopup}
	case "up":
		if m.popup.Kind() == actionbus.PopupThemeSelector {
			return actionbus.Action{Kind: actionbus.Key, KeyCode: "theme_prev"}
		}
	case "down":
		if m.popup.Kind() == actionbus.PopupThemeSelector {
			return actionbus.Action{Kind: actionbus.Key, KeyCode: "theme_next"}
		}
	case "enter":
		if m.popup.Kind() == actionbus.PopupSearchOverlay {
			if results := m.popup.SearchResults(); len(results.MessageIDs) > 0 {
				return actionbus.Action{Kind: actionbus.JumpToMessage, MessageID: results.MessageIDs[0]}
			}
			return actionbus.Action{Kind: actionbus.SearchChatMessages, Query: m.popup.SearchQuery()}
		}
	}
	return actionbus.Action{Kind: actionbus.Key, KeyCode: key}
}

func (m Model) translatePromptKey(msg tea.KeyMsg, key string) actionbus.Action {
	switch key {
	case m.keymap["send_message"]:
		if !m.editingMessageID.IsNone() {
			return actionbus.Action{Kind: actionbus.SendMessageEdited, MessageID: m.editingMessageID, Text: string(m.promptInput)}
		}
		return actionbus.Action{Kind: actionbus.SendMessage, Text: string(m.promptInput)}
	case "esc":
		return actionbus.Action{Kind: actionbus.FocusComponent, ComponentName: "chat_list"}
	case "backspace":
		return actionbus.Action{Kind: actionbus.Key, KeyCode: "backspace"}
	default:
		if msg.Type == tea.KeyRunes {
			return actionbus.Action{Kind: actionbus.Key, KeyCode: string(msg.Runes)}
		}
		return actionbus.Action{Kind: actionbus.Key, KeyCode: key}
	}
}

func (m Model) translateKeymapKey(key string) actionbus.Action {
	for action, bound := range m.keymap {
		if bound != key {
			continue
		}
		switch action {
		case "quit":
			return actionbus.Action{Kind: actionbus.Quit}
		case "try_quit":
			return actionbus.Action{Kind: actionbus.TryQuit}
		case "chat_list_next":
			return actionbus.Action{Kind: actionbus.ChatListNext}
		case "chat_list_previous":
			return actionbus.Action{Kind: actionbus.ChatListPrevious}
		case "chat_list_open":
			return actionbus.Action{Kind: actionbus.ChatListOpen}
		case "chat_list_unselect":
			return actionbus.Action{Kind: actionbus.ChatListUnselect}
		case "chat_window_next":
			return actionbus.Action{Kind: actionbus.ChatWindowNext}
		case "chat_window_previous":
			return actionbus.Action{Kind: actionbus.ChatWindowPrevious}
		case "chat_window_copy":
			return actionbus.Action{Kind: actionbus.ChatWindowCopy}
		case "chat_window_edit":
			return actionbus.Action{Kind: actionbus.ChatWindowEdit}
		case "chat_window_delete_me":
			return actionbus.Action{Kind: actionbus.ChatWindowDeleteForMe}
		case "hide_popup":
			return actionbus.Action{Kind: actionbus.HidePopup}
		case "focus_chat_list":
			return actionbus.Action{Kind: actionbus.FocusComponent, ComponentName: "chat_list"}
		case "show_command_guide":
			return actionbus.Action{Kind: actionbus.ShowPopup, Popup: actionbus.PopupCommandGuide}
		case "show_theme_selector":
			return actionbus.Action{Kind: actionbus.ShowPopup, Popup: actionbus.PopupThemeSelector}
		case "show_search_overlay":
			return actionbus.Action{Kind: actionbus.ShowPopup, Popup: actionbus.PopupSearchOverlay}
		case "focus_prompt":
			return actionbus.Action{Kind: actionbus.FocusComponent, ComponentName: "prompt"}
		case "view_all_messages":
			return actionbus.Action{Kind: actionbus.ViewAllMessages}
		case "load_older_messages":
			return actionbus.Action{Kind: actionbus.GetChatHistory}
		}
	}
	return actionbus.Action{Kind: actionbus.Key, KeyCode: key}
}

// applyAction is the single dispatch point for every Action, whether it
// originated from a key press or from another goroutine via the bus.
// It mutates Model state and returns the next command to wait on.
func (m Model) applyAction(a actionbus.Action) (tea.Model, tea.Cmd) {
	next := waitForAction(m.bus)

	switch a.Kind {
	case actionbus.Quit:
		m.quitting = true
		return m, tea.Quit

	case actionbus.TryQuit:
		if m.fsm != nil {
			m.fsm.RequestQuit()
		}
		return m, next

	case actionbus.Resize:
		m.layout = Compute(a.Width, a.Height, m.appCfg)
		return m, next

	case actionbus.Render:
		m.chats = m.cache.OrderedChatListEntries()
		return m, tea.Batch(next, renderTick(m.appCfg.RenderTickMillis))

	case actionbus.ChatListNext:
		if m.selectedChat < len(m.chats)-1 {
			m.selectedChat++
		}
		return m, next

	case actionbus.ChatListPrevious:
		if m.selectedChat > 0 {
			m.selectedChat--
		}
		return m, next

	case actionbus.ChatListUnselect:
		m.selectedChat = 0
		return m, next

	case actionbus.ChatListOpen:
		if m.selectedChat >= 0 && m.selectedChat < len(m.chats) {
			chatID := m.chats[m.selectedChat].ChatID
			m.open.Clear()
			m.open.SetOpenChatID(chatID)
			m.selectedMessage = 0
			m.editingMessageID = tgids.MessageIdNone
			m.focus = FocusPrompt
			return m, tea.Batch(next, sendAction(actionbus.Action{Kind: actionbus.PrepareChatHistory, ChatID: chatID}))
		}
		return m, next

	case actionbus.Init:
		if m.client == nil {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		limit := m.appCfg.HistoryPageSize
		if limit <= 0 {
			limit = 200
		}
		cmd := func() tea.Msg {
			reportErr(bus, "load chats", client.LoadChats(ctx, "main", limit))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.LoadChats:
		m.chats = m.cache.OrderedChatListEntries()
		return m, next

	case actionbus.FocusComponent:
		switch a.ComponentName {
		case "prompt":
			m.focus = FocusPrompt
		case "chat_list":
			m.focus = FocusChatList
			m.editingMessageID = tgids.MessageIdNone
		}
		return m, next

	case actionbus.ShowPopup:
		m.popup.Show(a.Popup)
		m.focus = FocusPopup
		return m, next

	case actionbus.HidePopup:
		m.popup.Hide()
		m.focus = FocusChatList
		return m, next

	case actionbus.StatusMessage:
		m.statusMessage = a.Text
		return m, next

	case actionbus.Key:
		return m.applyKeyCode(a.KeyCode), next

	case actionbus.SendMessage:
		text := string(m.promptInput)
		m.promptInput = nil
		m.promptCursor = 0
		chatID := m.open.OpenChatID()
		if m.client == nil || chatID.IsNone() || strings.TrimSpace(text) == "" {
			return m, next
		}
		replyTo := m.open.ReplyMessageID()
		client, bus, ctx := m.client, m.bus, m.ctx
		req := tgclient.SendMessageRequest{ChatID: int64(chatID), Text: text}
		if !replyTo.IsNone() {
			req.ReplyToMsgID = int64(replyTo)
		}
		m.open.SetReplyMessageID(tgids.MessageIdNone)
		cmd := func() tea.Msg {
			reportErr(bus, "send message", client.SendMessage(ctx, req))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.SendMessageEdited:
		text := string(m.promptInput)
		m.promptInput = nil
		m.promptCursor = 0
		m.editingMessageID = tgids.MessageIdNone
		chatID := m.open.OpenChatID()
		if m.client == nil || chatID.IsNone() || a.MessageID.IsNone() {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		req := tgclient.EditMessageRequest{ChatID: int64(chatID), MessageID: int64(a.MessageID), Text: text}
		cmd := func() tea.Msg {
			reportErr(bus, "edit message", client.EditMessageText(ctx, req))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.ChatWindowNext:
		if ids := m.open.OrderedMessageIDs(); m.selectedMessage < len(ids)-1 {
			m.selectedMessage++
		}
		return m, next

	case actionbus.ChatWindowPrevious:
		if m.selectedMessage > 0 {
			m.selectedMessage--
		}
		return m, next

	case actionbus.ChatWindowUnselect:
		m.selectedMessage = 0
		return m, next

	case actionbus.ChatWindowCopy:
		if entry, ok := m.selectedMessageEntry(); ok {
			var text strings.Builder
			for _, span := range entry.Content {
				text.WriteString(span.Text)
			}
			m.statusMessage = "copied: " + text.String()
		}
		return m, next

	case actionbus.ChatWindowEdit:
		if entry, ok := m.selectedMessageEntry(); ok {
			var text strings.Builder
			for _, span := range entry.Content {
				text.WriteString(span.Text)
			}
			m.promptInput = []rune(text.String())
			m.promptCursor = len(m.promptInput)
			m.editingMessageID = entry.ID
			m.focus = FocusPrompt
		}
		return m, next

	case actionbus.ChatWindowDeleteForMe, actionbus.ChatWindowDeleteForEveryone:
		entry, ok := m.selectedMessageEntry()
		chatID := m.open.OpenChatID()
		if !ok || m.client == nil || chatID.IsNone() {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		req := tgclient.DeleteMessagesRequest{
			ChatID:     int64(chatID),
			MessageIDs: []int64{int64(entry.ID)},
			Revoke:     a.Kind == actionbus.ChatWindowDeleteForEveryone,
		}
		cmd := func() tea.Msg {
			reportErr(bus, "delete message", client.DeleteMessages(ctx, req))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.DeleteMessages:
		chatID := a.ChatID
		if chatID.IsNone() {
			chatID = m.open.OpenChatID()
		}
		if m.client == nil || chatID.IsNone() || len(a.MessageIDs) == 0 {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		ids := make([]int64, len(a.MessageIDs))
		for i, id := range a.MessageIDs {
			ids[i] = int64(id)
		}
		req := tgclient.DeleteMessagesRequest{ChatID: int64(chatID), MessageIDs: ids, Revoke: a.Revoke}
		cmd := func() tea.Msg {
			reportErr(bus, "delete messages", client.DeleteMessages(ctx, req))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.PrepareChatHistory:
		chatID := a.ChatID
		if chatID.IsNone() {
			chatID = m.open.OpenChatID()
		}
		cmd := m.historyCmd(chatID, 0, 0, false)
		if cmd == nil {
			return m, next
		}
		return m, tea.Batch(next, cmd)

	case actionbus.GetChatHistory:
		chatID := m.open.OpenChatID()
		if chatID.IsNone() || m.client == nil || !m.open.BeginLoadOlder() {
			return m, next
		}
		from := m.open.FromMessageIDForLoadOlder()
		cmd := m.historyCmd(chatID, from, 0, true)
		return m, tea.Batch(next, cmd)

	case actionbus.JumpToMessage:
		chatID := m.open.OpenChatID()
		if chatID.IsNone() || m.client == nil {
			return m, next
		}
		cmd := m.historyCmd(chatID, a.MessageID, 0, false)
		if cmd == nil {
			return m, next
		}
		return m, tea.Batch(next, cmd)

	case actionbus.SearchChatMessages:
		chatID := m.open.OpenChatID()
		if chatID.IsNone() || m.client == nil {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		limit := m.appCfg.SearchPageSize
		if limit <= 0 {
			limit = 20
		}
		query := a.Query
		req := tgclient.SearchRequest{ChatID: int64(chatID), Query: query, Offset: a.Offset, Limit: limit}
		cmd := func() tea.Msg {
			ids, nextOffset, err := client.SearchChatMessages(ctx, req)
			if err != nil {
				reportErr(bus, "search messages", err)
				return nil
			}
			msgIDs := make([]tgids.MessageId, len(ids))
			for i, id := range ids {
				msgIDs[i] = tgids.MessageId(id)
			}
			return searchResultsMsg{results: actionbus.SearchResults{Query: query, MessageIDs: msgIDs, NextOffset: nextOffset}}
		}
		return m, tea.Batch(next, cmd)

	case actionbus.ViewAllMessages:
		chatID := m.open.OpenChatID()
		ids := m.open.OrderedMessageIDs()
		if chatID.IsNone() || m.client == nil || len(ids) == 0 {
			return m, next
		}
		newest := ids[len(ids)-1]
		if newest <= m.open.LastAcknowledgedMessageID() {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		flat := make([]int64, len(ids))
		for i, id := range ids {
			flat[i] = int64(id)
		}
		m.open.SetLastAcknowledgedMessageID(newest)
		cmd := func() tea.Msg {
			reportErr(bus, "view messages", client.ViewMessages(ctx, int64(chatID), flat))
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.GetMe:
		if m.client == nil {
			return m, next
		}
		client, open, bus, ctx := m.client, m.open, m.bus, m.ctx
		cmd := func() tea.Msg {
			me, err := client.GetMe(ctx)
			if err != nil {
				reportErr(bus, "get me", err)
				return nil
			}
			open.SetMe(me.UserID)
			return nil
		}
		return m, tea.Batch(next, cmd)

	case actionbus.GetChat:
		if m.client == nil || a.ChatID.IsNone() {
			return m, next
		}
		client, bus, ctx := m.client, m.bus, m.ctx
		chatID := a.ChatID
		cmd := func() tea.Msg {
			reportErr(bus, "get chat", client.GetChat(ctx, int64(chatID)))
			return nil
		}
		return m, tea.Batch(next, cmd)

	default:
		// Playback progress, paste, area-update, and photo-download
		// actions carry no Model state of their own yet; refresh the
		// chat list projection in case a background update landed.
		m.chats = m.cache.OrderedChatListEntries()
		return m, next
	}
}

// selectedMessageEntry returns the message under the chat window's
// selection cursor, if any are loaded.
func (m Model) selectedMessageEntry() (openchatstore.MessageEntry, bool) {
	ids := m.open.OrderedMessageIDs()
	if m.selectedMessage < 0 || m.selectedMessage >= len(ids) {
		return openchatstore.MessageEntry{}, false
	}
	return m.open.GetMessage(ids[m.selectedMessage])
}

// historyCmd builds the tea.Cmd that fetches one page of chat history and
// applies the results through the dispatcher, the same path live updates
// take. When loadOlder is set it releases the load-older single-flight
// gate on completion, however the request turns out.
func (m Model) historyCmd(chatID tgids.ChatId, from tgids.MessageId, offset int32, loadOlder bool) tea.Cmd {
	if chatID.IsNone() || m.client == nil {
		if loadOlder {
			m.open.EndLoadOlder()
		}
		return nil
	}
	client, disp, bus, ctx, open := m.client, m.disp, m.bus, m.ctx, m.open
	limit := m.appCfg.HistoryPageSize
	if limit <= 0 {
		limit = 50
	}
	req := tgclient.HistoryRequest{ChatID: int64(chatID), FromMsgID: int64(from), Offset: offset, Limit: limit}
	return func() tea.Msg {
		if loadOlder {
			defer open.EndLoadOlder()
		}
		updates, err := client.GetChatHistory(ctx, req)
		if err != nil {
			reportErr(bus, "get chat history", err)
			return nil
		}
		if disp != nil {
			for _, u := range updates {
				disp.Apply(u)
			}
		}
		return nil
	}
}

// reportErr surfaces a failed Telegram operation on the bus as a status
// message visible in the footer; nil errors are a no-op.
func reportErr(bus *actionbus.Bus, op string, err error) {
	if err != nil {
		bus.Send(actionbus.Action{Kind: actionbus.StatusMessage, Text: fmt.Sprintf("%s: %v", op, err)})
	}
}

func (m Model) applyKeyCode(code string) Model {
	switch {
	case code == "backspace":
		if m.promptCursor > 0 && m.focus == FocusPrompt {
			m.promptInput = append(m.promptInput[:m.promptCursor-1], m.promptInput[m.promptCursor:]...)
			m.promptCursor--
		}
	case code == "theme_next":
		m.popup.ThemeNext()
	case code == "theme_prev":
		m.popup.ThemePrevious()
	case m.focus == FocusPrompt:
		r := []rune(code)
		m.promptInput = append(m.promptInput[:m.promptCursor], append(r, m.promptInput[m.promptCursor:]...)...)
		m.promptCursor += len(r)
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	titleBar := m.theme.TitleBar.Width(m.layout.TitleBar.W).Render("tgt")
	statusBar := m.theme.StatusBar.Width(m.layout.StatusBar.W).Render(m.statusMessage)

	chatListView := m.renderChatList()
	chatPaneView := m.renderChatPane()

	var core string
	if m.layout.SmallArea {
		core = chatPaneView
	} else {
		core = lipgloss.JoinHorizontal(lipgloss.Top, chatListView, chatPaneView)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, titleBar, core, statusBar)
	if m.popup.IsOpen() {
		return body + "\n" + m.renderPopup()
	}
	return body
}

func (m Model) renderChatList() string {
	var b strings.Builder
	for i, c := range m.chats {
		style := lipgloss.NewStyle()
		if i == m.selectedChat {
			style = m.theme.SelectedChat
		}
		line := c.DisplayName
		if c.UnreadCount > 0 {
			line = fmt.Sprintf("%s %s", line, m.theme.UnreadBadge.Render(fmt.Sprintf("(%d)", c.UnreadCount)))
		}
		b.WriteString(style.Width(m.layout.ChatList.W).Render(line))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(m.layout.ChatList.W).Height(m.layout.ChatList.H).Render(b.String())
}

func (m Model) renderChatPane() string {
	var messages strings.Builder
	if !m.open.IsEmpty() {
		for _, id := range m.open.OrderedMessageIDs() {
			if entry, ok := m.open.GetMessage(id); ok {
				messages.WriteString(renderMessage(entry, m.theme))
				messages.WriteString("\n")
			}
		}
	}
	chat := lipgloss.NewStyle().Width(m.layout.Chat.W).Height(m.layout.Chat.H).Render(messages.String())
	prompt := lipgloss.NewStyle().Width(m.layout.Prompt.W).Height(m.layout.Prompt.H).Render("> " + string(m.promptInput))
	return lipgloss.JoinVertical(lipgloss.Left, chat, prompt)
}

func renderMessage(entry openchatstore.MessageEntry, th Theme) string {
	var text strings.Builder
	for _, span := range entry.Content {
		style := lipgloss.NewStyle()
		if span.Bold {
			style = style.Bold(true)
		}
		if span.Italic {
			style = style.Italic(true)
		}
		if span.Underline {
			style = style.Underline(true)
		}
		if span.Strikethrough {
			style = style.Strikethrough(true)
		}
		text.WriteString(style.Render(span.Text))
	}
	return fmt.Sprintf("%s %s", th.Timestamp.Render(fmt.Sprintf("[%d]", entry.Timestamp)), text.String())
}

func (m Model) renderPopup() string {
	switch m.popup.Kind() {
	case actionbus.PopupThemeSelector:
		return m.theme.PopupBorder.Render("theme: " + m.popup.SelectedTheme())
	case actionbus.PopupSearchOverlay:
		return m.theme.PopupBorder.Render("search: " + m.popup.SearchQuery())
	case actionbus.PopupPhotoViewer:
		return m.theme.PopupBorder.Render("photo: " + m.popup.PhotoPath())
	default:
		return m.theme.PopupBorder.Render(commandGuideText(m.keymap))
	}
}

func commandGuideText(keymap config.KeymapConfig) string {
	var b strings.Builder
	b.WriteString("commands\n")
	for action, key := range keymap {
		fmt.Fprintf(&b, "%-24s %s\n", action, key)
	}
	return b.String()
}
