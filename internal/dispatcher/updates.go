// Package dispatcher consumes the native Telegram client's update stream
// and applies it to the domain cache and open-chat store, deferring
// updates whose target entity has not yet been observed and replaying the
// defer queue to a fixpoint after each direct application.
package dispatcher

import (
	"context"
	"time"

	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/openchatstore"
	"github.com/basket/tgt/internal/otel"
	"github.com/basket/tgt/internal/tgids"
)

// Kind tags the variant of an incoming Update.
type Kind int

const (
	KindNewChat Kind = iota
	KindChatPosition
	KindChatLastMessage
	KindChatDraftMessage
	KindChatTitle
	KindChatPhoto
	KindChatPermissions
	KindChatReadInbox
	KindChatReadOutbox
	KindChatActionBar
	KindChatAvailableReactions
	KindChatUnreadMentionCount
	KindMessageUnreadReactions
	KindChatReplyMarkup
	KindChatMessageSender
	KindChatAutoDeleteTime
	KindChatNotificationSettings
	KindChatPendingJoinRequests
	KindChatBackground
	KindChatTheme
	KindChatDefaultDisableNotification
	KindChatMarkedAsUnread
	KindChatBlockList
	KindChatHasScheduledMessages
	KindUserStatus
	KindUser
	KindUserFullInfo
	KindBasicGroup
	KindBasicGroupFullInfo
	KindSupergroup
	KindSupergroupFullInfo
	KindSecretChat
	KindAuthorizationState
	KindNewMessage
	KindMessageEdited
	KindMessageSendSucceeded
	KindDeleteMessages
)

// Update is the tagged union over every update variant the dispatcher
// understands. Exactly one of the typed payload fields is meaningful,
// selected by Kind; this mirrors the native client's large sum type over
// update kinds without requiring per-kind Go types at the call site.
type Update struct {
	Kind Kind

	ChatID tgids.ChatId

	// NewChat / lookups
	Chat domaincache.Chat

	// ChatPosition
	Position domaincache.ChatPosition

	// ChatLastMessage / ChatDraftMessage: the full positions list that
	// accompanies these updates in the native protocol.
	Positions []domaincache.ChatPosition

	// Scalar field payloads, one of which is relevant per Kind.
	Str          string
	Str2         string
	Int32        int32
	Bool         bool
	MessageID    tgids.MessageId
	Sender       domaincache.MessageSender
	Permissions  domaincache.ChatPermissions
	Notification domaincache.NotificationSettings
	LastMessage  domaincache.LastMessage
	Reactions    []string

	// User / group entities
	UserID int64
	User   domaincache.User

	GroupID     int64
	BasicGroup  domaincache.BasicGroup
	Supergroup  domaincache.Supergroup
	SecretChat  domaincache.SecretChat
	FullInfoKey string
	FullInfoVal string

	// AuthorizationState forwarding payload (opaque to the dispatcher; it
	// only routes this to AuthFsm, never touching the caches).
	AuthState interface{}

	// Messages for the currently open chat.
	Message openchatstore.MessageEntry
	Entries []openchatstore.MessageEntry
}

// AuthSink receives AuthorizationState updates forwarded verbatim; the
// dispatcher never mutates caches for these.
type AuthSink interface {
	HandleAuthorizationState(state interface{})
}

// Dispatcher applies Updates to a Cache and an open-chat Store, deferring
// updates that target an entity not yet observed.
type Dispatcher struct {
	cache *domaincache.Cache
	open  *openchatstore.Store
	auth  AuthSink

	defer_  []Update // defer queue; unexported field name avoids the Go keyword
	logf    func(format string, args ...interface{})
	metrics *otel.Metrics
}

// SetMetrics attaches the OTel instruments Apply reports through. Calling
// it is optional; a Dispatcher with no metrics attached just skips
// recording.
func (d *Dispatcher) SetMetrics(m *otel.Metrics) { d.metrics = m }

// New builds a Dispatcher over cache and open, forwarding
// AuthorizationState updates to auth. logf may be nil (defaults to a
// no-op) and is used for the "log-and-continue" failure path below.
func New(cache *domaincache.Cache, open *openchatstore.Store, auth AuthSink, logf func(string, ...interface{})) *Dispatcher {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Dispatcher{cache: cache, open: open, auth: auth, logf: logf}
}

// Apply drains one Update: direct application if its target is present,
// otherwise pushed onto the defer queue. After a direct application it
// replays the defer queue to a fixpoint, so an update that arrives before
// its referenced chat/user converges once that entity appears.
func (d *Dispatcher) Apply(u Update) {
	start := time.Now()
	if d.metrics != nil {
		d.metrics.UpdatesReceived.Add(context.Background(), 1)
		defer func() {
			d.metrics.UpdateApplyTime.Record(context.Background(), time.Since(start).Seconds())
		}()
	}

	if u.Kind == KindAuthorizationState {
		if d.auth != nil {
			d.auth.HandleAuthorizationState(u.AuthState)
		}
		return
	}

	if d.applyOne(u) {
		d.replayToFixpoint()
		return
	}
	d.defer_ = append(d.defer_, u)
}

// replayToFixpoint repeatedly sweeps the defer queue, applying whatever
// now succeeds, until a full pass makes no progress.
func (d *Dispatcher) replayToFixpoint() {
	for {
		progressed := false
		remaining := d.defer_[:0:0]
		for _, u := range d.defer_ {
			if d.applyOne(u) {
				progressed = true
				continue
			}
			remaining = append(remaining, u)
		}
		d.defer_ = remaining
		if !progressed {
			return
		}
	}
}

// DeferredCount reports the current defer-queue length, mainly for tests
// and diagnostics.
func (d *Dispatcher) DeferredCount() int { return len(d.defer_) }

// applyOne attempts to apply u directly. Returns false if its target
// entity is absent (the update should be deferred).
func (d *Dispatcher) applyOne(u Update) bool {
	switch u.Kind {
	case KindNewChat:
		d.cache.NewChat(u.Chat)
		return true

	case KindChatPosition:
		return d.cache.SetChatPosition(u.ChatID, u.Position)

	case KindChatLastMessage:
		return d.cache.SetChatLastMessageAndPositions(u.ChatID, u.LastMessage, u.Positions)

	case KindChatDraftMessage:
		return d.cache.SetChatDraftAndPositions(u.ChatID, u.Str, u.Positions)

	case KindChatTitle:
		return d.cache.SetChatTitle(u.ChatID, u.Str)

	case KindChatPhoto:
		return d.cache.SetChatPhoto(u.ChatID, u.Str)

	case KindChatPermissions:
		return d.cache.SetChatPermissions(u.ChatID, u.Permissions)

	case KindChatReadInbox:
		return d.cache.SetChatReadInbox(u.ChatID, u.MessageID, u.Int32)

	case KindChatReadOutbox:
		return d.cache.SetChatReadOutbox(u.ChatID, u.MessageID)

	case KindChatActionBar:
		return d.cache.SetChatActionBar(u.ChatID, u.Str)

	case KindChatAvailableReactions:
		return d.cache.SetChatAvailableReactions(u.ChatID, u.Reactions)

	case KindChatUnreadMentionCount:
		return d.cache.SetChatUnreadMentionCount(u.ChatID, u.Int32)

	case KindMessageUnreadReactions:
		// Unread-reaction counts ride the same field as mention counts
		// on the Chat struct; there is no dedicated slot for them.
		return d.cache.SetChatUnreadReactionCount(u.ChatID, u.Int32)

	case KindChatReplyMarkup:
		return d.cache.SetChatReplyMarkupMessageID(u.ChatID, u.MessageID)

	case KindChatMessageSender:
		return d.cache.SetChatMessageSender(u.ChatID, u.Sender)

	case KindChatAutoDeleteTime:
		return d.cache.SetChatAutoDeleteTime(u.ChatID, u.Int32)

	case KindChatNotificationSettings:
		return d.cache.SetChatNotificationSettings(u.ChatID, u.Notification)

	case KindChatPendingJoinRequests:
		return d.cache.SetChatPendingJoinRequests(u.ChatID, u.Int32)

	case KindChatBackground:
		return d.cache.SetChatBackground(u.ChatID, u.Str)

	case KindChatTheme:
		return d.cache.SetChatTheme(u.ChatID, u.Str)

	case KindChatDefaultDisableNotification:
		return d.cache.SetChatDefaultDisableNotification(u.ChatID, u.Bool)

	case KindChatMarkedAsUnread:
		return d.cache.SetChatMarkedAsUnread(u.ChatID, u.Bool)

	case KindChatBlockList:
		return d.cache.SetChatBlocked(u.ChatID, u.Bool)

	case KindChatHasScheduledMessages:
		return d.cache.SetChatHasScheduledMessages(u.ChatID, u.Bool)

	case KindUserStatus:
		return d.cache.SetUserStatus(u.UserID, u.Str)

	case KindUser:
		d.cache.UpsertUser(u.User)
		return true

	case KindUserFullInfo:
		return d.cache.SetUserFullInfoField(u.UserID, u.FullInfoKey, u.FullInfoVal)

	case KindBasicGroup:
		d.cache.UpsertBasicGroup(u.BasicGroup)
		return true

	case KindBasicGroupFullInfo:
		return d.cache.SetBasicGroupFullInfoField(u.GroupID, u.FullInfoKey, u.FullInfoVal)

	case KindSupergroup:
		d.cache.UpsertSupergroup(u.Supergroup)
		return true

	case KindSupergroupFullInfo:
		return d.cache.SetSupergroupFullInfoField(u.GroupID, u.FullInfoKey, u.FullInfoVal)

	case KindSecretChat:
		d.cache.UpsertSecretChat(u.SecretChat)
		return true

	case KindNewMessage, KindMessageSendSucceeded:
		if d.open.OpenChatID() != u.ChatID {
			return true // not the open chat: nothing to do, not a defer case
		}
		d.open.InsertMessages([]openchatstore.MessageEntry{u.Message})
		return true

	case KindMessageEdited:
		if d.open.OpenChatID() != u.ChatID {
			return true
		}
		ok := d.open.UpdateMessage(u.Message.ID, func(e *openchatstore.MessageEntry) {
			e.Content = u.Message.Content
		})
		if !ok {
			d.open.InsertMessages([]openchatstore.MessageEntry{u.Message})
		}
		return true

	case KindDeleteMessages:
		if d.open.OpenChatID() == u.ChatID {
			for _, e := range u.Entries {
				d.open.RemoveMessage(e.ID)
			}
		}
		return true

	default:
		d.logf("dispatcher: malformed or unrecognized update kind %d, dropping", u.Kind)
		return true
	}
}
