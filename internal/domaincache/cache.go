// Package domaincache owns the in-memory projection of every Telegram
// entity observed during a session: users, basic groups, supergroups,
// secret chats, chats, and the ordered chat index derived from chat
// positions. Each top-level entity map is guarded by its own mutex so the
// update intake loop never blocks behind an unrelated entity, and no lock
// is ever held across an outbound Telegram request.
package domaincache

import (
	"sync"

	"github.com/basket/tgt/internal/tgids"
)

// Cache is the thread-safe store of session entities.
type Cache struct {
	usersMu sync.Mutex
	users   map[int64]*User

	userFullMu sync.Mutex
	userFull   map[int64]map[string]string

	groupsMu sync.Mutex
	groups   map[int64]*BasicGroup

	groupFullMu sync.Mutex
	groupFull   map[int64]map[string]string

	supergroupsMu sync.Mutex
	supergroups   map[int64]*Supergroup

	supergroupFullMu sync.Mutex
	supergroupFull   map[int64]map[string]string

	secretChatsMu sync.Mutex
	secretChats   map[int32]*SecretChat

	chatsMu sync.Mutex
	chats   map[tgids.ChatId]*Chat

	index *orderedIndex
}

// New builds an empty Cache.
func New() *Cache {
	return &Cache{
		users:       make(map[int64]*User),
		userFull:    make(map[int64]map[string]string),
		groups:         make(map[int64]*BasicGroup),
		groupFull:      make(map[int64]map[string]string),
		supergroups:    make(map[int64]*Supergroup),
		supergroupFull: make(map[int64]map[string]string),
		secretChats: make(map[int32]*SecretChat),
		chats:       make(map[tgids.ChatId]*Chat),
		index:       newOrderedIndex(),
	}
}

///////////////////////////////////////////////////////////////////////////
// USERS

// UpsertUser inserts or overwrites a user record.
func (c *Cache) UpsertUser(u User) {
	c.usersMu.Lock()
	defer c.usersMu.Unlock()
	cp := u
	c.users[u.ID] = &cp
}

// User returns a copy of the user with id, and whether it exists.
func (c *Cache) User(id int64) (User, bool) {
	c.usersMu.Lock()
	defer c.usersMu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// SetUserStatus overwrites the status field of an existing user. Returns
// false if the user is absent (the caller must defer the update).
func (c *Cache) SetUserStatus(id int64, status string) bool {
	c.usersMu.Lock()
	defer c.usersMu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return false
	}
	u.Status = status
	return true
}

// SetUserFullInfoField overwrites a single key in a user's full-info map.
// Returns false if the user is absent.
func (c *Cache) SetUserFullInfoField(id int64, key, value string) bool {
	c.usersMu.Lock()
	_, ok := c.users[id]
	c.usersMu.Unlock()
	if !ok {
		return false
	}
	c.userFullMu.Lock()
	defer c.userFullMu.Unlock()
	m, ok := c.userFull[id]
	if !ok {
		m = make(map[string]string)
		c.userFull[id] = m
	}
	m[key] = value
	return true
}

///////////////////////////////////////////////////////////////////////////
// GROUPS / SUPERGROUPS / SECRET CHATS

// UpsertBasicGroup inserts or overwrites a basic group record.
func (c *Cache) UpsertBasicGroup(g BasicGroup) {
	c.groupsMu.Lock()
	defer c.groupsMu.Unlock()
	cp := g
	c.groups[g.ID] = &cp
}

// BasicGroup returns a copy of the basic group with id, and whether it exists.
func (c *Cache) BasicGroup(id int64) (BasicGroup, bool) {
	c.groupsMu.Lock()
	defer c.groupsMu.Unlock()
	g, ok := c.groups[id]
	if !ok {
		return BasicGroup{}, false
	}
	return *g, true
}

// UpsertSupergroup inserts or overwrites a supergroup record.
func (c *Cache) UpsertSupergroup(g Supergroup) {
	c.supergroupsMu.Lock()
	defer c.supergroupsMu.Unlock()
	cp := g
	c.supergroups[g.ID] = &cp
}

// Supergroup returns a copy of the supergroup with id, and whether it exists.
func (c *Cache) Supergroup(id int64) (Supergroup, bool) {
	c.supergroupsMu.Lock()
	defer c.supergroupsMu.Unlock()
	g, ok := c.supergroups[id]
	if !ok {
		return Supergroup{}, false
	}
	return *g, true
}

// SetBasicGroupFullInfoField overwrites a single key in a basic group's
// full-info map. Returns false if the group is absent.
func (c *Cache) SetBasicGroupFullInfoField(id int64, key, value string) bool {
	c.groupsMu.Lock()
	_, ok := c.groups[id]
	c.groupsMu.Unlock()
	if !ok {
		return false
	}
	c.groupFullMu.Lock()
	defer c.groupFullMu.Unlock()
	m, ok := c.groupFull[id]
	if !ok {
		m = make(map[string]string)
		c.groupFull[id] = m
	}
	m[key] = value
	return true
}

// SetSupergroupFullInfoField overwrites a single key in a supergroup's
// full-info map. Returns false if the supergroup is absent.
func (c *Cache) SetSupergroupFullInfoField(id int64, key, value string) bool {
	c.supergroupsMu.Lock()
	_, ok := c.supergroups[id]
	c.supergroupsMu.Unlock()
	if !ok {
		return false
	}
	c.supergroupFullMu.Lock()
	defer c.supergroupFullMu.Unlock()
	m, ok := c.supergroupFull[id]
	if !ok {
		m = make(map[string]string)
		c.supergroupFull[id] = m
	}
	m[key] = value
	return true
}

// UpsertSecretChat inserts or overwrites a secret chat record.
func (c *Cache) UpsertSecretChat(s SecretChat) {
	c.secretChatsMu.Lock()
	defer c.secretChatsMu.Unlock()
	cp := s
	c.secretChats[s.ID] = &cp
}

// SecretChat returns a copy of the secret chat with id, and whether it exists.
func (c *Cache) SecretChat(id int32) (SecretChat, bool) {
	c.secretChatsMu.Lock()
	defer c.secretChatsMu.Unlock()
	s, ok := c.secretChats[id]
	if !ok {
		return SecretChat{}, false
	}
	return *s, true
}

///////////////////////////////////////////////////////////////////////////
// CHATS — lookup and field mutation

// Chat returns a copy of the chat with id, and whether it exists.
func (c *Cache) Chat(id tgids.ChatId) (Chat, bool) {
	c.chatsMu.Lock()
	defer c.chatsMu.Unlock()
	ch, ok := c.chats[id]
	if !ok {
		return Chat{}, false
	}
	return cloneChat(ch), true
}

func cloneChat(ch *Chat) Chat {
	cp := *ch
	cp.Positions = clonePositions(ch.Positions)
	if ch.LastMessage != nil {
		lm := *ch.LastMessage
		cp.LastMessage = &lm
	}
	cp.AvailableReactions = append([]string(nil), ch.AvailableReactions...)
	return cp
}

// withChat locates chat id under the chats lock and applies fn to it.
// Returns false if the chat is absent — callers must defer the update.
func (c *Cache) withChat(id tgids.ChatId, fn func(*Chat)) bool {
	c.chatsMu.Lock()
	defer c.chatsMu.Unlock()
	ch, ok := c.chats[id]
	if !ok {
		return false
	}
	fn(ch)
	return true
}

// NewChat applies Update::NewChat: insert the chat, then reconcile its
// positions into the ordered index.
func (c *Cache) NewChat(ch Chat) {
	positions := ch.Positions
	ch.Positions = nil
	c.chatsMu.Lock()
	cp := ch
	c.chats[ch.ID] = &cp
	c.chatsMu.Unlock()

	c.ReconcilePositions(ch.ID, positions)
}

// ReconcilePositions is the position-reconcile protocol: given a chat id
// and its full new position list,
//  1. remove every currently-stored Main-list OrderedChat from the index
//     (must be present — assertion),
//  2. replace the chat's positions with newPositions,
//  3. insert an OrderedChat for every new Main-list position (must not
//     already be present — assertion).
func (c *Cache) ReconcilePositions(id tgids.ChatId, newPositions []ChatPosition) {
	c.chatsMu.Lock()
	ch, ok := c.chats[id]
	if !ok {
		c.chatsMu.Unlock()
		panic("domaincache: ReconcilePositions on unknown chat")
	}
	oldMain := make([]ChatPosition, 0, len(ch.Positions))
	for _, p := range ch.Positions {
		if p.List.IsMain() {
			oldMain = append(oldMain, p)
		}
	}
	ch.Positions = clonePositions(newPositions)
	c.chatsMu.Unlock()

	for _, p := range oldMain {
		c.index.removeChatInList(id, p.List)
	}
	for _, p := range newPositions {
		if p.List.IsMain() && p.InList() {
			c.index.insert(OrderedChat{ChatID: id, Position: p})
		}
	}
}

// SetChatPosition applies Update::ChatPosition, which only ever affects the
// Main list per this spec: locate the existing Main-list position (if any)
// and remove it; if the new order is non-zero, prepend the new position;
// other-list positions keep their relative order. The Main-list index is
// then reconciled.
func (c *Cache) SetChatPosition(id tgids.ChatId, position ChatPosition) bool {
	var newPositions []ChatPosition
	ok := c.withChat(id, func(ch *Chat) {
		rest := make([]ChatPosition, 0, len(ch.Positions))
		for _, p := range ch.Positions {
			if !p.List.IsMain() {
				rest = append(rest, p)
			}
		}
		if position.Order != 0 {
			newPositions = append([]ChatPosition{position}, rest...)
		} else {
			newPositions = rest
		}
	})
	if !ok {
		return false
	}
	c.ReconcilePositions(id, newPositions)
	return true
}

// SetChatLastMessageAndPositions applies Update::ChatLastMessage: update
// the last-message scalar and reconcile positions from the update's
// positions list.
func (c *Cache) SetChatLastMessageAndPositions(id tgids.ChatId, lm LastMessage, positions []ChatPosition) bool {
	ok := c.withChat(id, func(ch *Chat) {
		lmCopy := lm
		ch.LastMessage = &lmCopy
	})
	if !ok {
		return false
	}
	c.ReconcilePositions(id, positions)
	return true
}

// SetChatDraftAndPositions applies Update::ChatDraftMessage.
func (c *Cache) SetChatDraftAndPositions(id tgids.ChatId, draft string, positions []ChatPosition) bool {
	ok := c.withChat(id, func(ch *Chat) { ch.Draft = draft })
	if !ok {
		return false
	}
	c.ReconcilePositions(id, positions)
	return true
}

// Field setters below each mutate exactly one named field. Each returns
// false if the chat is absent so the dispatcher can defer.

func (c *Cache) SetChatTitle(id tgids.ChatId, title string) bool {
	return c.withChat(id, func(ch *Chat) { ch.Title = title })
}

func (c *Cache) SetChatPhoto(id tgids.ChatId, photo string) bool {
	return c.withChat(id, func(ch *Chat) { ch.Photo = photo })
}

func (c *Cache) SetChatPermissions(id tgids.ChatId, perm ChatPermissions) bool {
	return c.withChat(id, func(ch *Chat) { ch.Permissions = perm })
}

func (c *Cache) SetChatReadInbox(id tgids.ChatId, lastRead tgids.MessageId, unread int32) bool {
	return c.withChat(id, func(ch *Chat) {
		ch.LastReadInboxMessageID = lastRead
		ch.UnreadCount = unread
	})
}

func (c *Cache) SetChatReadOutbox(id tgids.ChatId, lastRead tgids.MessageId) bool {
	return c.withChat(id, func(ch *Chat) { ch.LastReadOutboxMessageID = lastRead })
}

func (c *Cache) SetChatActionBar(id tgids.ChatId, actionBar string) bool {
	return c.withChat(id, func(ch *Chat) { ch.ActionBar = actionBar })
}

func (c *Cache) SetChatAvailableReactions(id tgids.ChatId, reactions []string) bool {
	return c.withChat(id, func(ch *Chat) { ch.AvailableReactions = append([]string(nil), reactions...) })
}

func (c *Cache) SetChatUnreadMentionCount(id tgids.ChatId, count int32) bool {
	return c.withChat(id, func(ch *Chat) { ch.UnreadMentionCount = count })
}

// SetChatUnreadReactionCount applies Update::MessageUnreadReactions. The
// native client stores this count in the mention-count field (likely a
// bug upstream); per Open Questions we preserve that behavior and flag
// it rather than silently "fixing" it, since UI rendering elsewhere may
// already depend on the aliasing.
func (c *Cache) SetChatUnreadReactionCount(id tgids.ChatId, count int32) bool {
	return c.withChat(id, func(ch *Chat) {
		ch.UnreadReactionCount = count
		ch.UnreadMentionCount = count
	})
}

func (c *Cache) SetChatReplyMarkupMessageID(id tgids.ChatId, msgID tgids.MessageId) bool {
	return c.withChat(id, func(ch *Chat) { ch.ReplyMarkupMessageID = msgID })
}

func (c *Cache) SetChatMessageSender(id tgids.ChatId, sender MessageSender) bool {
	return c.withChat(id, func(ch *Chat) { ch.MessageSenderID = sender })
}

func (c *Cache) SetChatAutoDeleteTime(id tgids.ChatId, seconds int32) bool {
	return c.withChat(id, func(ch *Chat) { ch.AutoDeleteTime = seconds })
}

func (c *Cache) SetChatNotificationSettings(id tgids.ChatId, ns NotificationSettings) bool {
	return c.withChat(id, func(ch *Chat) { ch.NotificationSettings = ns })
}

func (c *Cache) SetChatPendingJoinRequests(id tgids.ChatId, count int32) bool {
	return c.withChat(id, func(ch *Chat) { ch.PendingJoinRequestCount = count })
}

func (c *Cache) SetChatBackground(id tgids.ChatId, background string) bool {
	return c.withChat(id, func(ch *Chat) { ch.Background = background })
}

func (c *Cache) SetChatTheme(id tgids.ChatId, theme string) bool {
	return c.withChat(id, func(ch *Chat) { ch.ThemeName = theme })
}

func (c *Cache) SetChatDefaultDisableNotification(id tgids.ChatId, disable bool) bool {
	return c.withChat(id, func(ch *Chat) { ch.DefaultDisableNotification = disable })
}

func (c *Cache) SetChatMarkedAsUnread(id tgids.ChatId, marked bool) bool {
	return c.withChat(id, func(ch *Chat) { ch.IsMarkedAsUnread = marked })
}

func (c *Cache) SetChatBlocked(id tgids.ChatId, blocked bool) bool {
	return c.withChat(id, func(ch *Chat) { ch.IsBlocked = blocked })
}

func (c *Cache) SetChatHasScheduledMessages(id tgids.ChatId, has bool) bool {
	return c.withChat(id, func(ch *Chat) { ch.HasScheduledMessages = has })
}

///////////////////////////////////////////////////////////////////////////
// ORDERED CHAT INDEX (read access)

// OrderedChatIDs returns the chat ids of the Main-list index in rank order.
func (c *Cache) OrderedChatIDs() []tgids.ChatId {
	return c.index.orderedChatIDs()
}

// OrderedChats returns a defensive copy of the raw index entries, mainly
// for tests asserting the ordering invariants.
func (c *Cache) OrderedChats() []OrderedChat {
	return c.index.snapshot()
}
