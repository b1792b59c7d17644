package dispatcher

import (
	"testing"

	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/openchatstore"
)

type fakeAuthSink struct {
	states []interface{}
}

func (f *fakeAuthSink) HandleAuthorizationState(state interface{}) {
	f.states = append(f.states, state)
}

func newTestDispatcher() (*Dispatcher, *domaincache.Cache, *openchatstore.Store, *fakeAuthSink) {
	cache := domaincache.New()
	open := openchatstore.New()
	auth := &fakeAuthSink{}
	d := New(cache, open, auth, nil)
	return d, cache, open, auth
}

func TestOutOfOrderTitleThenNewChatThenDefer(t *testing.T) {
	d, cache, _, _ := newTestDispatcher()

	d.Apply(Update{Kind: KindChatTitle, ChatID: 7, Str: "A"})
	if d.DeferredCount() != 1 {
		t.Fatalf("DeferredCount() = %d, want 1 after deferring a title update for an unknown chat", d.DeferredCount())
	}

	d.Apply(Update{Kind: KindNewChat, ChatID: 7, Chat: domaincache.Chat{ID: 7, Title: ""}})

	if d.DeferredCount() != 0 {
		t.Fatalf("DeferredCount() = %d, want 0 after fixpoint replay", d.DeferredCount())
	}
	ch, ok := cache.Chat(7)
	if !ok || ch.Title != "A" {
		t.Fatalf("chat 7 title = %q ok=%v, want A true", ch.Title, ok)
	}
}

func TestAuthorizationStateNeverTouchesCache(t *testing.T) {
	d, cache, _, auth := newTestDispatcher()
	d.Apply(Update{Kind: KindAuthorizationState, AuthState: "WaitTdlibParameters"})
	if len(auth.states) != 1 {
		t.Fatalf("expected exactly one forwarded auth state, got %d", len(auth.states))
	}
	if ids := cache.OrderedChatIDs(); len(ids) != 0 {
		t.Fatalf("AuthorizationState must never mutate the cache, got chats %v", ids)
	}
}

func TestDeferQueueReplayConfluence(t *testing.T) {
	// Same set of updates, two different arrival orders, must produce the
	// same final DomainCache state ( confluence property).
	run := func(updates []Update) *domaincache.Cache {
		d, cache, _, _ := newTestDispatcher()
		for _, u := range updates {
			d.Apply(u)
		}
		return cache
	}

	newChat := Update{Kind: KindNewChat, ChatID: 7, Chat: domaincache.Chat{ID: 7}}
	title := Update{Kind: KindChatTitle, ChatID: 7, Str: "A"}
	photo := Update{Kind: KindChatPhoto, ChatID: 7, Str: "p.jpg"}

	a := run([]Update{title, photo, newChat})
	b := run([]Update{photo, newChat, title})

	chA, _ := a.Chat(7)
	chB, _ := b.Chat(7)
	if chA.Title != chB.Title || chA.Photo != chB.Photo {
		t.Fatalf("divergent final state: %+v vs %+v", chA, chB)
	}
	if chA.Title != "A" || chA.Photo != "p.jpg" {
		t.Fatalf("unexpected final state: %+v", chA)
	}
}

func TestUserStatusDefersUntilUserKnown(t *testing.T) {
	d, cache, _, _ := newTestDispatcher()
	d.Apply(Update{Kind: KindUserStatus, UserID: 1, Str: "online"})
	if d.DeferredCount() != 1 {
		t.Fatalf("DeferredCount() = %d, want 1", d.DeferredCount())
	}
	d.Apply(Update{Kind: KindUser, User: domaincache.User{ID: 1}})
	u, ok := cache.User(1)
	if !ok || u.Status != "online" {
		t.Fatalf("user 1 = %+v ok=%v, want status=online", u, ok)
	}
}

func TestMessageUnreadReactionsAliasesMentionCount(t *testing.T) {
	d, cache, _, _ := newTestDispatcher()
	d.Apply(Update{Kind: KindNewChat, ChatID: 1, Chat: domaincache.Chat{ID: 1}})
	d.Apply(Update{Kind: KindMessageUnreadReactions, ChatID: 1, Int32: 3})
	ch, _ := cache.Chat(1)
	if ch.UnreadMentionCount != 3 || ch.UnreadReactionCount != 3 {
		t.Fatalf("chat 1 = %+v, want both unread counters at 3 (preserved aliasing bug,)", ch)
	}
}

func TestNewMessageUpdatesOnlyOpenChat(t *testing.T) {
	d, _, open, _ := newTestDispatcher()
	open.SetOpenChatID(5)
	d.Apply(Update{Kind: KindNewMessage, ChatID: 5, Message: openchatstore.MessageEntry{ID: 10}})
	d.Apply(Update{Kind: KindNewMessage, ChatID: 99, Message: openchatstore.MessageEntry{ID: 20}})

	if _, ok := open.GetMessage(10); !ok {
		t.Fatal("message for the open chat must be inserted")
	}
	if _, ok := open.GetMessage(20); ok {
		t.Fatal("message for a non-open chat must not be inserted")
	}
}

func TestDeleteMessagesRemovesFromOpenStore(t *testing.T) {
	d, _, open, _ := newTestDispatcher()
	open.SetOpenChatID(5)
	open.InsertMessages([]openchatstore.MessageEntry{{ID: 1}, {ID: 2}})
	d.Apply(Update{Kind: KindDeleteMessages, ChatID: 5, Entries: []openchatstore.MessageEntry{{ID: 1}}})
	if _, ok := open.GetMessage(1); ok {
		t.Fatal("deleted message must be gone")
	}
	if _, ok := open.GetMessage(2); !ok {
		t.Fatal("untouched message must remain")
	}
}
