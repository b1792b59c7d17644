package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdinPrompter implements authfsm.Prompter by reading from the controlling
// terminal. Password and code entry are not masked beyond what term.ReadPassword
// gives us for free; there is no line editor here, just the raw terminal.
type stdinPrompter struct {
	in *bufio.Reader
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(os.Stdin)}
}

func (p *stdinPrompter) ask(label string) (string, error) {
	fmt.Print(label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *stdinPrompter) PromptPhoneNumber(ctx context.Context) (string, error) {
	return p.ask("Phone number: ")
}

func (p *stdinPrompter) PromptEmailAddress(ctx context.Context) (string, error) {
	return p.ask("Email address: ")
}

func (p *stdinPrompter) PromptEmailCode(ctx context.Context) (string, error) {
	return p.ask("Email code: ")
}

func (p *stdinPrompter) PromptCode(ctx context.Context) (string, error) {
	return p.ask("Login code: ")
}

func (p *stdinPrompter) PromptFirstLastName(ctx context.Context) (first, last string, err error) {
	first, err = p.ask("First name: ")
	if err != nil {
		return "", "", err
	}
	last, err = p.ask("Last name: ")
	if err != nil {
		return "", "", err
	}
	return first, last, nil
}

func (p *stdinPrompter) PromptPassword(ctx context.Context) (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.ask("")
}

func (p *stdinPrompter) ShowDeviceLink(ctx context.Context, link string) {
	fmt.Println("Open this link to continue authentication:", link)
}
