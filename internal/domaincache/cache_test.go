package domaincache

import (
	"testing"

	"github.com/basket/tgt/internal/tgids"
)

func TestNewChatThenPositionUpdate(t *testing.T) {
	c := New()
	c.NewChat(Chat{
		ID: 42,
		Positions: []ChatPosition{
			{List: tgids.MainList, Order: 100},
		},
	})
	if got := c.OrderedChatIDs(); len(got) != 1 || got[0] != 42 {
		t.Fatalf("OrderedChatIDs() = %v, want [42]", got)
	}

	ok := c.SetChatPosition(42, ChatPosition{List: tgids.MainList, Order: 0})
	if !ok {
		t.Fatal("SetChatPosition on known chat must succeed")
	}
	if got := c.OrderedChatIDs(); len(got) != 0 {
		t.Fatalf("OrderedChatIDs() = %v, want []", got)
	}
	ch, ok := c.Chat(42)
	if !ok {
		t.Fatal("chat 42 must still be present")
	}
	mainCount := 0
	for _, p := range ch.Positions {
		if p.List.IsMain() {
			mainCount++
		}
	}
	if mainCount != 0 {
		t.Fatalf("expected no Main positions left, got %d", mainCount)
	}
}

func TestOrderedChatIDsStability(t *testing.T) {
	c := New()
	c.NewChat(Chat{ID: 1, Positions: []ChatPosition{{List: tgids.MainList, Order: 10}}})
	c.NewChat(Chat{ID: 2, Positions: []ChatPosition{{List: tgids.MainList, Order: 10}}})

	got := c.OrderedChatIDs()
	want := []tgids.ChatId{2, 1}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("OrderedChatIDs() = %v, want %v (higher id wins ties)", got, want)
	}
}

func TestOutOfOrderFieldUpdate(t *testing.T) {
	c := New()
	// ChatTitle with no NewChat yet — simulated by the dispatcher's defer
	// queue in practice; here we exercise that the cache itself correctly
	// reports "absent" so a caller knows to defer.
	if ok := c.SetChatTitle(7, "A"); ok {
		t.Fatal("SetChatTitle must report false for an unknown chat")
	}

	c.NewChat(Chat{ID: 7, Title: ""})
	if ok := c.SetChatTitle(7, "A"); !ok {
		t.Fatal("SetChatTitle must succeed once the chat exists")
	}

	ch, ok := c.Chat(7)
	if !ok || ch.Title != "A" {
		t.Fatalf("chat 7 title = %q, ok=%v, want %q, true", ch.Title, ok, "A")
	}
}

func TestReconcilePositionsIdempotent(t *testing.T) {
	c := New()
	c.NewChat(Chat{ID: 5, Positions: []ChatPosition{{List: tgids.MainList, Order: 50}}})
	before := c.OrderedChats()

	// Applying the identical ChatPosition update twice yields the same
	// index state as applying it once.
	c.SetChatPosition(5, ChatPosition{List: tgids.MainList, Order: 50})
	c.SetChatPosition(5, ChatPosition{List: tgids.MainList, Order: 50})

	after := c.OrderedChats()
	if len(before) != len(after) || len(after) != 1 {
		t.Fatalf("expected stable single-entry index, before=%v after=%v", before, after)
	}
	if after[0].Position.Order != 50 {
		t.Fatalf("order changed unexpectedly: %+v", after[0])
	}
}

func TestReconcilePositionsPanicsOnUnknownChat(t *testing.T) {
	c := New()
	defer func() {
		if recover() == nil {
			t.Fatal("ReconcilePositions on unknown chat must panic")
		}
	}()
	c.ReconcilePositions(999, nil)
}

func TestUserStatusDefersOnAbsent(t *testing.T) {
	c := New()
	if c.SetUserStatus(1, "online") {
		t.Fatal("SetUserStatus must report false for unknown user")
	}
	c.UpsertUser(User{ID: 1})
	if !c.SetUserStatus(1, "online") {
		t.Fatal("SetUserStatus must succeed once the user exists")
	}
	u, _ := c.User(1)
	if u.Status != "online" {
		t.Fatalf("status = %q, want online", u.Status)
	}
}

func TestOrderedChatInvariant(t *testing.T) {
	c := New()
	c.NewChat(Chat{ID: 1, Title: "a", Positions: []ChatPosition{{List: tgids.MainList, Order: 1}}})
	c.NewChat(Chat{ID: 2, Title: "b", Positions: []ChatPosition{{List: tgids.MainList, Order: 2}}})

	index := c.OrderedChats()
	for _, oc := range index {
		ch, ok := c.Chat(oc.ChatID)
		if !ok {
			t.Fatalf("index entry %v has no backing chat", oc)
		}
		found := false
		for _, p := range ch.Positions {
			if p.List.Equal(oc.Position.List) && p.Order == oc.Position.Order {
				found = true
			}
		}
		if !found {
			t.Fatalf("chat %d does not carry indexed position %+v", oc.ChatID, oc.Position)
		}
	}
}

func TestTryNameFromChatsOrUsersFallsBackToUser(t *testing.T) {
	c := New()
	c.UpsertUser(User{ID: 9, FirstName: "Ada"})
	if got := c.TryNameFromChatsOrUsers(9); got != "Ada" {
		t.Fatalf("TryNameFromChatsOrUsers = %q, want Ada", got)
	}
	c.UpsertUser(User{ID: 9, FirstName: "Ada", Username: "ada_l"})
	if got := c.TryNameFromChatsOrUsers(9); got != "ada_l" {
		t.Fatalf("TryNameFromChatsOrUsers = %q, want ada_l (username preferred)", got)
	}
}
