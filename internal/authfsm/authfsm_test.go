package authfsm

import (
	"context"
	"testing"
)

type recordingClient struct {
	calls []string
}

func (c *recordingClient) SetTdlibParameters(ctx context.Context, _ Credentials) error {
	c.calls = append(c.calls, "set_tdlib_parameters")
	return nil
}
func (c *recordingClient) SetAuthenticationPhoneNumber(ctx context.Context, _ string) error {
	c.calls = append(c.calls, "set_authentication_phone_number")
	return nil
}
func (c *recordingClient) SetAuthenticationEmailAddress(ctx context.Context, _ string) error {
	c.calls = append(c.calls, "set_authentication_email_address")
	return nil
}
func (c *recordingClient) CheckAuthenticationEmailCode(ctx context.Context, _ string) error {
	c.calls = append(c.calls, "check_authentication_email_code")
	return nil
}
func (c *recordingClient) CheckAuthenticationCode(ctx context.Context, _ string) error {
	c.calls = append(c.calls, "check_authentication_code")
	return nil
}
func (c *recordingClient) RegisterUser(ctx context.Context, _, _ string) error {
	c.calls = append(c.calls, "register_user")
	return nil
}
func (c *recordingClient) CheckAuthenticationPassword(ctx context.Context, _ string) error {
	c.calls = append(c.calls, "check_authentication_password")
	return nil
}
func (c *recordingClient) Close(ctx context.Context) error { return nil }

type stubPrompter struct{}

func (stubPrompter) PromptPhoneNumber(ctx context.Context) (string, error)  { return "+1", nil }
func (stubPrompter) PromptEmailAddress(ctx context.Context) (string, error) { return "a@b.c", nil }
func (stubPrompter) PromptEmailCode(ctx context.Context) (string, error)    { return "123", nil }
func (stubPrompter) PromptCode(ctx context.Context) (string, error)        { return "000", nil }
func (stubPrompter) PromptFirstLastName(ctx context.Context) (string, string, error) {
	return "Ada", "L", nil
}
func (stubPrompter) PromptPassword(ctx context.Context) (string, error) { return "hunter2", nil }
func (stubPrompter) ShowDeviceLink(ctx context.Context, link string)    {}

func TestHappyPath(t *testing.T) {
	client := &recordingClient{}
	f := New(client, stubPrompter{}, Credentials{}, nil)
	ctx := context.Background()

	f.Handle(ctx, State{Kind: WaitTdlibParameters})
	f.Handle(ctx, State{Kind: WaitPhoneNumber})
	f.Handle(ctx, State{Kind: WaitCode})
	f.Handle(ctx, State{Kind: Ready})

	want := []string{"set_tdlib_parameters", "set_authentication_phone_number", "check_authentication_code"}
	if len(client.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", client.calls, want)
	}
	for i := range want {
		if client.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", client.calls, want)
		}
	}
	if !f.HaveAuthorization() {
		t.Fatal("HaveAuthorization() must be true after Ready")
	}
}

func TestReachesReadyOnlyAfterTdlibParameters(t *testing.T) {
	client := &recordingClient{}
	f := New(client, stubPrompter{}, Credentials{}, nil)
	if f.CurrentState() != WaitTdlibParameters {
		t.Fatalf("initial state = %v, want WaitTdlibParameters", f.CurrentState())
	}
}

func TestShutdownLatchesCanQuit(t *testing.T) {
	client := &recordingClient{}
	f := New(client, stubPrompter{}, Credentials{}, nil)
	ctx := context.Background()

	f.RequestQuit()
	f.Handle(ctx, State{Kind: Closing})
	if f.CanQuit() {
		t.Fatal("CanQuit must stay false while merely Closing")
	}
	f.Handle(ctx, State{Kind: Closed})
	if !f.CanQuit() {
		t.Fatal("CanQuit must become true once Closed is observed with need_quit latched")
	}
}

func TestClosedWithoutQuitRequestDoesNotLatch(t *testing.T) {
	client := &recordingClient{}
	f := New(client, stubPrompter{}, Credentials{}, nil)
	f.Handle(context.Background(), State{Kind: Closed})
	if f.CanQuit() {
		t.Fatal("CanQuit must not latch without a prior RequestQuit")
	}
}
