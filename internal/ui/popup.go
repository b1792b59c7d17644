package ui

import "github.com/basket/tgt/internal/actionbus"

// PopupState tracks which overlay, if any, is currently shown above the
// core window: help, theme picker, search, and the photo viewer.
type PopupState int

const (
	PopupClosed PopupState = iota
	PopupOpen
)

// Popup holds the shared open/closed state plus per-kind payload for the
// four overlay kinds. Only one popup is visible at a time; ShowPopup
// replaces whatever was previously open.
type Popup struct {
	state PopupState
	kind  actionbus.PopupKind

	// PopupSearchOverlay
	searchQuery   string
	searchResults actionbus.SearchResults

	// PopupThemeSelector
	themeIndex int
	themeNames []string

	// PopupPhotoViewer
	photoPath string
}

func NewPopup(themeNames []string) Popup {
	return Popup{themeNames: themeNames}
}

func (p *Popup) Show(kind actionbus.PopupKind) {
	p.state = PopupOpen
	p.kind = kind
	if kind == actionbus.PopupSearchOverlay {
		p.searchQuery = ""
		p.searchResults = actionbus.SearchResults{}
	}
}

func (p *Popup) Hide() { p.state = PopupClosed }

func (p Popup) IsOpen() bool               { return p.state == PopupOpen }
func (p Popup) Kind() actionbus.PopupKind  { return p.kind }
func (p Popup) SearchQuery() string        { return p.searchQuery }
func (p Popup) SearchResults() actionbus.SearchResults { return p.searchResults }
func (p Popup) ThemeIndex() int            { return p.themeIndex }
func (p Popup) ThemeNames() []string       { return p.themeNames }
func (p Popup) PhotoPath() string          { return p.photoPath }

func (p *Popup) SetSearchQuery(q string)                       { p.searchQuery = q }
func (p *Popup) SetSearchResults(r actionbus.SearchResults)     { p.searchResults = r }
func (p *Popup) SetPhotoPath(path string)                      { p.photoPath = path }

func (p *Popup) ThemeNext() {
	if len(p.themeNames) == 0 {
		return
	}
	p.themeIndex = (p.themeIndex + 1) % len(p.themeNames)
}

func (p *Popup) ThemePrevious() {
	if len(p.themeNames) == 0 {
		return
	}
	p.themeIndex = (p.themeIndex - 1 + len(p.themeNames)) % len(p.themeNames)
}

func (p Popup) SelectedTheme() string {
	if len(p.themeNames) == 0 {
		return ""
	}
	return p.themeNames[p.themeIndex]
}
