package tgclient

import (
	"context"
	"sync"

	"github.com/basket/tgt/internal/authfsm"
	"github.com/basket/tgt/internal/dispatcher"
)

// Mock is an in-memory Client used by dispatcher/UI wiring tests. Calls are
// recorded so tests can assert on what was requested, and Updates lets a
// test script the update stream the way a fake tdlib connection would.
type Mock struct {
	mu      sync.Mutex
	Calls   []string
	updates chan dispatcher.Update

	Me           Me
	HistoryReply []dispatcher.Update
	SearchReply  []int64
	FailNext     error
}

func NewMock() *Mock {
	return &Mock{updates: make(chan dispatcher.Update, 64)}
}

func (m *Mock) record(name string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, name)
	m.mu.Unlock()
}

// Push injects an update as if it arrived from the native client.
func (m *Mock) Push(u dispatcher.Update) { m.updates <- u }

func (m *Mock) Create(ctx context.Context) (ClientID, error) {
	m.record("create")
	return ClientID(1), nil
}

func (m *Mock) Receive(ctx context.Context) (<-chan dispatcher.Update, error) {
	m.record("receive")
	return m.updates, nil
}

func (m *Mock) LoadChats(ctx context.Context, listKind string, limit int32) error {
	m.record("load_chats")
	return m.FailNext
}

func (m *Mock) GetChat(ctx context.Context, chatID int64) error {
	m.record("get_chat")
	return m.FailNext
}

func (m *Mock) GetMe(ctx context.Context) (Me, error) {
	m.record("get_me")
	return m.Me, m.FailNext
}

func (m *Mock) GetChatHistory(ctx context.Context, req HistoryRequest) ([]dispatcher.Update, error) {
	m.record("get_chat_history")
	return m.HistoryReply, m.FailNext
}

func (m *Mock) SendMessage(ctx context.Context, req SendMessageRequest) error {
	m.record("send_message")
	return m.FailNext
}

func (m *Mock) EditMessageText(ctx context.Context, req EditMessageRequest) error {
	m.record("edit_message_text")
	return m.FailNext
}

func (m *Mock) DeleteMessages(ctx context.Context, req DeleteMessagesRequest) error {
	m.record("delete_messages")
	return m.FailNext
}

func (m *Mock) SearchChatMessages(ctx context.Context, req SearchRequest) ([]int64, int32, error) {
	m.record("search_chat_messages")
	return m.SearchReply, req.Offset + int32(len(m.SearchReply)), m.FailNext
}

func (m *Mock) ViewMessages(ctx context.Context, chatID int64, messageIDs []int64) error {
	m.record("view_messages")
	return m.FailNext
}

func (m *Mock) SetLogVerbosityLevel(level int32) error { return nil }
func (m *Mock) SetLogStream(path string) error         { return nil }

func (m *Mock) SetTdlibParameters(ctx context.Context, c authfsm.Credentials) error {
	m.record("set_tdlib_parameters")
	return m.FailNext
}

func (m *Mock) SetAuthenticationPhoneNumber(ctx context.Context, phone string) error {
	m.record("set_authentication_phone_number")
	return m.FailNext
}

func (m *Mock) SetAuthenticationEmailAddress(ctx context.Context, email string) error {
	m.record("set_authentication_email_address")
	return m.FailNext
}

func (m *Mock) CheckAuthenticationEmailCode(ctx context.Context, code string) error {
	m.record("check_authentication_email_code")
	return m.FailNext
}

func (m *Mock) CheckAuthenticationCode(ctx context.Context, code string) error {
	m.record("check_authentication_code")
	return m.FailNext
}

func (m *Mock) RegisterUser(ctx context.Context, first, last string) error {
	m.record("register_user")
	return m.FailNext
}

func (m *Mock) CheckAuthenticationPassword(ctx context.Context, password string) error {
	m.record("check_authentication_password")
	return m.FailNext
}

func (m *Mock) Close(ctx context.Context) error {
	m.record("close")
	close(m.updates)
	return nil
}

func (m *Mock) LogOut(ctx context.Context) error {
	m.record("log_out")
	return m.FailNext
}
