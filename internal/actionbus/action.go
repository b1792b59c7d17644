// Package actionbus implements the single-producer-multi-consumer command
// channel connecting terminal input, render ticks, and Telegram operations.
// It is an unbounded, lossless, strictly FIFO queue: actions within
// one producer are delivered in submission order, and actions enqueued
// while the main loop drains the channel are seen by that same drain.
package actionbus

import "github.com/basket/tgt/internal/tgids"

// Kind tags the variant of an Action.
type Kind int

const (
	// Lifecycle
	Init Kind = iota
	Quit
	TryQuit
	Render
	Resize
	Paste

	// Navigation / focus
	FocusComponent
	UnfocusComponent
	ChatListNext
	ChatListPrevious
	ChatListUnselect
	ChatListOpen
	ChatWindowNext
	ChatWindowPrevious
	ChatWindowUnselect
	ChatWindowCopy
	ChatWindowEdit
	ChatWindowDeleteForEveryone
	ChatWindowDeleteForMe
	ShowPopup
	HidePopup

	// Telegram ops
	GetMe
	LoadChats
	GetChat
	GetChatHistory
	PrepareChatHistory
	SendMessage
	SendMessageEdited
	DeleteMessages
	ViewAllMessages
	JumpToMessage
	SearchChatMessages

	// Input
	Key
	UpdateArea

	// Playback
	VoicePlaybackStarted
	VoicePlaybackPosition
	VoicePlaybackEnded
	PhotoDownloaded
	StatusMessage
)

// PopupKind names the overlay a Show/HidePopup action targets.
type PopupKind int

const (
	PopupCommandGuide PopupKind = iota
	PopupThemeSelector
	PopupPhotoViewer
	PopupSearchOverlay
)

// KeyModifiers is a bitmask of held modifier keys.
type KeyModifiers int

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
)

// SearchResults is the result-paging contract for SearchChatMessages: a
// page of matching message ids plus the offset to fetch the next page.
type SearchResults struct {
	Query      string
	MessageIDs []tgids.MessageId
	NextOffset int32
}

// Action is one command on the bus. Exactly the payload fields relevant to
// Kind are populated; this mirrors a large discriminated Action enum as a
// single flat Go struct rather than N action types, dispatched on Kind.
type Action struct {
	Kind Kind

	// Lifecycle
	Width, Height int
	Text          string

	// Navigation / focus
	ComponentName string
	Popup         PopupKind

	// Telegram ops
	ChatID       tgids.ChatId
	ListKind     string // "main", "archive", or "folder:<id>"
	Limit        int32
	Offset       int32
	FromMessage  tgids.MessageId
	MessageID    tgids.MessageId
	MessageIDs   []tgids.MessageId
	Revoke       bool
	Query        string
	Results      SearchResults

	// Input
	KeyCode   string
	Modifiers KeyModifiers
	Area      Rect

	// Playback
	Path          string
	PlaybackMsgID tgids.MessageId
	PositionSec   float64
	TotalSec      float64
}

// Rect is a terminal-cell rectangle, used by UpdateArea and layout.
type Rect struct {
	X, Y, W, H int
}
