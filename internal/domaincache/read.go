package domaincache

import "github.com/basket/tgt/internal/tgids"

// ChatListEntry is a renderer-facing projection of one chat in the ordered
// index: display name, last-message preview, unread counters, and the
// last-read markers the UI needs to draw read/unread state.
type ChatListEntry struct {
	ChatID              tgids.ChatId
	DisplayName         string
	LastMessagePreview  string
	UnreadCount         int32
	UnreadMentionCount  int32
	IsMarkedAsUnread    bool
	LastReadInboxMsgID  tgids.MessageId
	LastReadOutboxMsgID tgids.MessageId
	UserStatus          string // non-empty only for one-on-one chats backed by a User
}

// TryNameFromChatsOrUsers resolves a display name for id: chat title if id
// is a chat, else the user's username, else first name, else a numeric
// fallback. This mirrors the native client's try_name_from_chats_or_users
// helper used across the renderer.
func (c *Cache) TryNameFromChatsOrUsers(id tgids.ChatId) string {
	if ch, ok := c.Chat(id); ok && ch.Title != "" {
		return ch.Title
	}
	if u, ok := c.User(int64(id)); ok {
		if u.Username != "" {
			return u.Username
		}
		if u.FirstName != "" {
			return u.FirstName
		}
	}
	return id.String()
}

// OrderedChatListEntries projects the Main-list ordered index into
// renderer-facing views, in rank order.
func (c *Cache) OrderedChatListEntries() []ChatListEntry {
	ids := c.OrderedChatIDs()
	out := make([]ChatListEntry, 0, len(ids))
	for _, id := range ids {
		ch, ok := c.Chat(id)
		if !ok {
			continue
		}
		entry := ChatListEntry{
			ChatID:              id,
			DisplayName:         c.TryNameFromChatsOrUsers(id),
			UnreadCount:         ch.UnreadCount,
			UnreadMentionCount:  ch.UnreadMentionCount,
			IsMarkedAsUnread:    ch.IsMarkedAsUnread,
			LastReadInboxMsgID:  ch.LastReadInboxMessageID,
			LastReadOutboxMsgID: ch.LastReadOutboxMessageID,
		}
		if ch.LastMessage != nil {
			entry.LastMessagePreview = ch.LastMessage.Preview
		}
		if u, ok := c.User(int64(id)); ok {
			entry.UserStatus = u.Status
		}
		out = append(out, entry)
	}
	return out
}

// LastReadMarkers returns the last-read inbox/outbox markers for a chat,
// used by the open-chat renderer to draw read/unread dividers.
func (c *Cache) LastReadMarkers(id tgids.ChatId) (inbox, outbox tgids.MessageId, ok bool) {
	ch, ok := c.Chat(id)
	if !ok {
		return tgids.MessageIdNone, tgids.MessageIdNone, false
	}
	return ch.LastReadInboxMessageID, ch.LastReadOutboxMessageID, true
}
