package domaincache

import "github.com/basket/tgt/internal/tgids"

// ChatPosition is a chat's rank within one chat list. Order == 0 means the
// chat is not a member of that list.
type ChatPosition struct {
	List     tgids.ChatListKind
	Order    int64
	IsPinned bool
	Source   string // opaque source tag the native client attaches (e.g. folder/pin reason)
}

// InList reports whether the position places the chat in its list.
func (p ChatPosition) InList() bool { return p.Order != 0 }

// MessageSender is a tagged union over {User(id), Chat(id)}.
type MessageSender struct {
	IsChat bool
	ID     int64
}

// UserSender builds a MessageSender naming a user.
func UserSender(id int64) MessageSender { return MessageSender{IsChat: false, ID: id} }

// ChatSender builds a MessageSender naming a chat (e.g. an anonymous admin post).
func ChatSender(id int64) MessageSender { return MessageSender{IsChat: true, ID: id} }

// LastMessage is the chat-list preview of a chat's most recent message.
type LastMessage struct {
	ID      tgids.MessageId
	Sender  MessageSender
	Preview string
	Date    int64
}

// NotificationSettings mirrors the native client's per-chat notification
// policy fields that this client surfaces.
type NotificationSettings struct {
	MuteFor              int32
	ShowPreview          bool
	DisableNotifications bool
}

// User mirrors the native library's User shape for the fields this client
// projects.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Status    string // coarse status tag: "online", "offline", "recently", ...
}

// BasicGroup mirrors the native library's BasicGroup shape.
type BasicGroup struct {
	ID          int64
	MemberCount int32
	IsActive    bool
}

// Supergroup mirrors the native library's Supergroup shape.
type Supergroup struct {
	ID           int64
	Username     string
	MemberCount  int32
	IsChannel    bool
	IsVerified   bool
}

// SecretChat mirrors the native library's SecretChat shape.
type SecretChat struct {
	ID      int32
	UserID  int64
	State   string // "pending", "ready", "closed"
	IsOutbound bool
}

// Chat is the primary domain entity: a conversation with another user, a
// group, a channel, or a secret chat.
type Chat struct {
	ID                       tgids.ChatId
	Title                    string
	Photo                    string // small file id/path, opaque to this layer
	Permissions              ChatPermissions
	LastMessage              *LastMessage
	Positions                []ChatPosition
	UnreadCount              int32
	UnreadMentionCount       int32
	UnreadReactionCount      int32
	LastReadInboxMessageID   tgids.MessageId
	LastReadOutboxMessageID  tgids.MessageId
	NotificationSettings     NotificationSettings
	Draft                    string
	MessageSenderID          MessageSender
	AutoDeleteTime           int32
	IsBlocked                bool
	HasScheduledMessages     bool
	Background               string
	ThemeName                string
	DefaultDisableNotification bool
	IsMarkedAsUnread         bool
	PendingJoinRequestCount  int32
	ActionBar                string
	AvailableReactions       []string
	ReplyMarkupMessageID     tgids.MessageId
}

// ChatPermissions mirrors the subset of tdlib ChatPermissions this client
// needs to gate compose-time affordances.
type ChatPermissions struct {
	CanSendMessages bool
	CanSendMedia    bool
	CanPinMessages  bool
}

// clonePositions returns an independent copy of a position slice.
func clonePositions(in []ChatPosition) []ChatPosition {
	if in == nil {
		return nil
	}
	out := make([]ChatPosition, len(in))
	copy(out, in)
	return out
}
