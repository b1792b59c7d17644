// Package authfsm drives the login/logout/close state machine by
// interpreting AuthorizationState updates from the native Telegram client
// and issuing the matching requests or UI prompts.
package authfsm

import (
	"context"
	"sync/atomic"
)

// StateKind tags the AuthorizationState variants this machine handles.
type StateKind int

const (
	WaitTdlibParameters StateKind = iota
	WaitPhoneNumber
	WaitOtherDeviceConfirmation
	WaitEmailAddress
	WaitEmailCode
	WaitCode
	WaitRegistration
	WaitPassword
	Ready
	LoggingOut
	Closing
	Closed
)

func (k StateKind) String() string {
	switch k {
	case WaitTdlibParameters:
		return "WaitTdlibParameters"
	case WaitPhoneNumber:
		return "WaitPhoneNumber"
	case WaitOtherDeviceConfirmation:
		return "WaitOtherDeviceConfirmation"
	case WaitEmailAddress:
		return "WaitEmailAddress"
	case WaitEmailCode:
		return "WaitEmailCode"
	case WaitCode:
		return "WaitCode"
	case WaitRegistration:
		return "WaitRegistration"
	case WaitPassword:
		return "WaitPassword"
	case Ready:
		return "Ready"
	case LoggingOut:
		return "LoggingOut"
	case Closing:
		return "Closing"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// State is one AuthorizationState update, carrying variant-specific
// payload (only DeviceLink is ever populated, for WaitOtherDeviceConfirmation).
type State struct {
	Kind       StateKind
	DeviceLink string
}

// Credentials are the tdlib-parameter fields required by WaitTdlibParameters.
type Credentials struct {
	APIID       int32
	APIHash     string
	DatabaseDir string
	Locale      string
	Device      string
	AppVersion  string
}

// Prompter collects interactive input from the UI while AuthFsm owns the
// prompt (modeled as an async request-response, never a blocking
// stdin read from the main loop).
type Prompter interface {
	PromptPhoneNumber(ctx context.Context) (string, error)
	PromptEmailAddress(ctx context.Context) (string, error)
	PromptEmailCode(ctx context.Context) (string, error)
	PromptCode(ctx context.Context) (string, error)
	PromptFirstLastName(ctx context.Context) (first, last string, err error)
	PromptPassword(ctx context.Context) (string, error)
	ShowDeviceLink(ctx context.Context, link string)
}

// Client is the subset of the native client contract AuthFsm drives
// directly.
type Client interface {
	SetTdlibParameters(ctx context.Context, c Credentials) error
	SetAuthenticationPhoneNumber(ctx context.Context, phone string) error
	SetAuthenticationEmailAddress(ctx context.Context, email string) error
	CheckAuthenticationEmailCode(ctx context.Context, code string) error
	CheckAuthenticationCode(ctx context.Context, code string) error
	RegisterUser(ctx context.Context, first, last string) error
	CheckAuthenticationPassword(ctx context.Context, password string) error
	Close(ctx context.Context) error
}

// Logf logs an error string — the failure path most states fall back to:
// log and remain in the current state for the next Handle call to retry.
type Logf func(format string, args ...interface{})

// Fsm is the AuthFsm state machine.
type Fsm struct {
	client Client
	prompt Prompter
	creds  Credentials
	logf   Logf

	state atomic.Value // StateKind

	haveAuthorization atomic.Bool
	needQuit          atomic.Bool
	canQuit           atomic.Bool
}

// New builds an Fsm. Initial state is whatever the native client emits
// first (normally WaitTdlibParameters) — callers discover it via the
// first Handle call, not a constructor parameter.
func New(client Client, prompt Prompter, creds Credentials, logf Logf) *Fsm {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	f := &Fsm{client: client, prompt: prompt, creds: creds, logf: logf}
	f.state.Store(WaitTdlibParameters)
	return f
}

// RequestQuit latches need_quit, starting the global shutdown path.
func (f *Fsm) RequestQuit() { f.needQuit.Store(true) }

// HaveAuthorization reports whether the session reached Ready.
func (f *Fsm) HaveAuthorization() bool { return f.haveAuthorization.Load() }

// CanQuit reports whether the intake thread may now exit (latched once
// Closed is observed with need_quit set).
func (f *Fsm) CanQuit() bool { return f.canQuit.Load() }

// CurrentState returns the last-observed AuthorizationState kind.
func (f *Fsm) CurrentState() StateKind {
	if v, ok := f.state.Load().(StateKind); ok {
		return v
	}
	return WaitTdlibParameters
}

// Handle interprets one AuthorizationState update and drives the matching
// transition below.
func (f *Fsm) Handle(ctx context.Context, s State) {
	f.state.Store(s.Kind)

	switch s.Kind {
	case WaitTdlibParameters:
		if err := f.client.SetTdlibParameters(ctx, f.creds); err != nil {
			f.logf("authfsm: set_tdlib_parameters failed: %v", err)
		}

	case WaitPhoneNumber:
		f.loop(func() error {
			phone, err := f.prompt.PromptPhoneNumber(ctx)
			if err != nil {
				return err
			}
			return f.client.SetAuthenticationPhoneNumber(ctx, phone)
		})

	case WaitOtherDeviceConfirmation:
		f.prompt.ShowDeviceLink(ctx, s.DeviceLink)

	case WaitEmailAddress:
		f.loop(func() error {
			email, err := f.prompt.PromptEmailAddress(ctx)
			if err != nil {
				return err
			}
			return f.client.SetAuthenticationEmailAddress(ctx, email)
		})

	case WaitEmailCode:
		f.loop(func() error {
			code, err := f.prompt.PromptEmailCode(ctx)
			if err != nil {
				return err
			}
			return f.client.CheckAuthenticationEmailCode(ctx, code)
		})

	case WaitCode:
		f.loop(func() error {
			code, err := f.prompt.PromptCode(ctx)
			if err != nil {
				return err
			}
			return f.client.CheckAuthenticationCode(ctx, code)
		})

	case WaitRegistration:
		// Fatal on failure: only a single attempt is made here, errors propagate.
		first, last, err := f.prompt.PromptFirstLastName(ctx)
		if err != nil {
			f.logf("authfsm: registration prompt failed: %v", err)
			return
		}
		if err := f.client.RegisterUser(ctx, first, last); err != nil {
			f.logf("authfsm: register_user failed (fatal): %v", err)
		}

	case WaitPassword:
		password, err := f.prompt.PromptPassword(ctx)
		if err != nil {
			f.logf("authfsm: password prompt failed: %v", err)
			return
		}
		if err := f.client.CheckAuthenticationPassword(ctx, password); err != nil {
			f.logf("authfsm: check_authentication_password failed (fatal): %v", err)
		}

	case Ready:
		f.haveAuthorization.Store(true)

	case LoggingOut, Closing:
		f.haveAuthorization.Store(false)

	case Closed:
		if f.needQuit.Load() {
			f.canQuit.Store(true)
		}

	default:
		f.logf("authfsm: unrecognized AuthorizationState kind %v", s.Kind)
	}
}

// loop retries fn until it succeeds, logging each failure — the "loop on
// error" failure semantics of WaitPhoneNumber/WaitEmailAddress/WaitEmailCode/
// WaitCode. A single attempt is made per Handle call; the caller
// (the native client re-emitting the same AuthorizationState on failure)
// drives subsequent retries, so loop here only logs and returns.
func (f *Fsm) loop(fn func() error) {
	if err := fn(); err != nil {
		f.logf("authfsm: transition failed, will retry on next prompt: %v", err)
	}
}
