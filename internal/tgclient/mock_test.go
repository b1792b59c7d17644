package tgclient

import (
	"context"
	"testing"

	"github.com/gotd/td/tg"

	"github.com/basket/tgt/internal/dispatcher"
	"github.com/basket/tgt/internal/tgids"
)

func TestMockRecordsCallsInOrder(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	if _, err := m.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.GetMe(ctx); err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if err := m.SendMessage(ctx, SendMessageRequest{ChatID: 1, Text: "hi"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	want := []string{"create", "get_me", "send_message"}
	if len(m.Calls) != len(want) {
		t.Fatalf("Calls = %v, want %v", m.Calls, want)
	}
	for i, w := range want {
		if m.Calls[i] != w {
			t.Fatalf("Calls[%d] = %q, want %q", i, m.Calls[i], w)
		}
	}
}

func TestMockPushDeliversOnReceive(t *testing.T) {
	m := NewMock()
	ch, err := m.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	m.Push(dispatcher.Update{Kind: dispatcher.KindNewChat, ChatID: tgids.ChatId(42)})
	u := <-ch
	if u.ChatID != 42 {
		t.Fatalf("pushed update ChatID = %d, want 42", u.ChatID)
	}
}

func TestProjectEntitiesPlainText(t *testing.T) {
	spans := projectEntities("hello", nil)
	if len(spans) != 1 || spans[0].Text != "hello" {
		t.Fatalf("projectEntities(plain) = %+v", spans)
	}
}

func TestProjectEntitiesBoldSlice(t *testing.T) {
	entities := []tg.MessageEntityClass{
		&tg.MessageEntityBold{Offset: 0, Length: 5},
	}
	spans := projectEntities("hello world", entities)
	if len(spans) != 2 {
		t.Fatalf("projectEntities = %+v, want 2 spans", spans)
	}
	if !spans[0].Bold || spans[0].Text != "hello" {
		t.Fatalf("spans[0] = %+v, want bold %q", spans[0], "hello")
	}
	if spans[1].Bold || spans[1].Text != " world" {
		t.Fatalf("spans[1] = %+v, want plain %q", spans[1], " world")
	}
}
