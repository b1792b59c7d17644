// Package ui implements the terminal component tree: a CoreWindow split
// between a chat list and a chat pane, wrapped by a title bar and a
// status bar, with popups layered above everything.
package ui

import "github.com/basket/tgt/internal/config"

// Layout is the set of pixel/cell rectangles each component renders into,
// recomputed on every Resize action.
type Layout struct {
	TitleBar  Rect
	ChatList  Rect
	ChatPane  Rect
	Chat      Rect
	Prompt    Rect
	StatusBar Rect
	SmallArea bool
}

// Rect is a terminal-cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Compute derives the layout for a given terminal size, following//   - vertical split: TitleBar(1) / CoreWindow(rest) / StatusBar(1)
//   - CoreWindow splits horizontally into ChatList (width%, floored at a
//     minimum) and ChatPane (the remainder)
//   - ChatPane splits vertically into Chat (rest) / Prompt (minimum height)
//   - below SmallAreaWidthThreshold, the chat list collapses and the chat
//     pane takes the full width ( "small-area mode")
func Compute(width, height int, app config.AppConfig) Layout {
	l := Layout{}
	if height < 3 {
		height = 3
	}
	l.TitleBar = Rect{X: 0, Y: 0, W: width, H: 1}
	l.StatusBar = Rect{X: 0, Y: height - 1, W: width, H: 1}
	coreY, coreH := 1, height-2

	l.SmallArea = width < app.SmallAreaWidthThreshold
	if l.SmallArea {
		l.ChatList = Rect{}
		l.ChatPane = Rect{X: 0, Y: coreY, W: width, H: coreH}
	} else {
		listW := width * app.ChatListWidthPercent / 100
		if listW < app.ChatListMinWidth {
			listW = app.ChatListMinWidth
		}
		if listW > width {
			listW = width
		}
		l.ChatList = Rect{X: 0, Y: coreY, W: listW, H: coreH}
		l.ChatPane = Rect{X: listW, Y: coreY, W: width - listW, H: coreH}
	}

	promptH := app.PromptMinHeight
	if promptH > l.ChatPane.H {
		promptH = l.ChatPane.H
	}
	chatH := l.ChatPane.H - promptH
	if chatH < 0 {
		chatH = 0
	}
	l.Chat = Rect{X: l.ChatPane.X, Y: l.ChatPane.Y, W: l.ChatPane.W, H: chatH}
	l.Prompt = Rect{X: l.ChatPane.X, Y: l.ChatPane.Y + chatH, W: l.ChatPane.W, H: promptH}
	return l
}
