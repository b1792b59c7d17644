// Package tgclient defines the contract this system requires of a native
// Telegram client library and provides a gotd/td-backed adapter that
// fulfills it. The contract is intentionally narrow: create, send a typed
// request, and receive a stream of tagged updates — everything else
// (update decoding into the domain model, position bookkeeping, ordered
// chat index maintenance) lives in internal/dispatcher and
// internal/domaincache.
package tgclient

import (
	"context"

	"github.com/basket/tgt/internal/authfsm"
	"github.com/basket/tgt/internal/dispatcher"
)

// ClientID identifies one created native-client instance (tdlib sessions
// support multiple clients per process; this system uses exactly one, but
// the contract carries the id through for forward compatibility).
type ClientID int32

// HistoryRequest is the parameter set for get_chat_history.
type HistoryRequest struct {
	ChatID     int64
	FromMsgID  int64
	Offset     int32
	Limit      int32
	OnlyLocal  bool
}

// SendMessageRequest is the parameter set for send_message.
type SendMessageRequest struct {
	ChatID          int64
	MessageThreadID int64
	ReplyToMsgID    int64
	Text            string
	DisableNotify   bool
}

// EditMessageRequest is the parameter set for edit_message_text.
type EditMessageRequest struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// DeleteMessagesRequest is the parameter set for delete_messages.
type DeleteMessagesRequest struct {
	ChatID     int64
	MessageIDs []int64
	Revoke     bool
}

// SearchRequest is the parameter set for search_chat_messages.
type SearchRequest struct {
	ChatID int64
	Query  string
	Offset int32
	Limit  int32
}

// Me is the result of get_me.
type Me struct {
	UserID    int64
	Username  string
	FirstName string
}

// Client is the native Telegram client contract this system requires. A
// single instance is created per process — no multi-account multiplexing.
type Client interface {
	// Create starts the client and returns its id. The update stream (see
	// Receive) only becomes meaningful after Create.
	Create(ctx context.Context) (ClientID, error)

	// Receive blocks until the next update is available, or ctx is
	// cancelled. The returned channel is closed when the client shuts
	// down (AuthorizationState reaches Closed and the poll loop exits).
	Receive(ctx context.Context) (<-chan dispatcher.Update, error)

	// Telegram operations. Each corresponds 1:1 to a tdlib request
	// this system issues.
	LoadChats(ctx context.Context, listKind string, limit int32) error
	GetChat(ctx context.Context, chatID int64) error
	GetMe(ctx context.Context) (Me, error)
	GetChatHistory(ctx context.Context, req HistoryRequest) ([]dispatcher.Update, error)
	SendMessage(ctx context.Context, req SendMessageRequest) error
	EditMessageText(ctx context.Context, req EditMessageRequest) error
	DeleteMessages(ctx context.Context, req DeleteMessagesRequest) error
	SearchChatMessages(ctx context.Context, req SearchRequest) ([]int64, int32, error)
	ViewMessages(ctx context.Context, chatID int64, messageIDs []int64) error
	SetLogVerbosityLevel(level int32) error
	SetLogStream(path string) error

	// AuthFsm surface.
	authfsm.Client

	// LogOut and Close are distinct: LogOut ends the session, Close
	// tears down the client object.
	LogOut(ctx context.Context) error
}
