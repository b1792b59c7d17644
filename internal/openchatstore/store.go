// Package openchatstore holds the loaded window of messages for exactly
// one chat: the currently open chat. It tracks the contiguous-by-key
// range of loaded message ids and a single-flight "load older" gate.
package openchatstore

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/basket/tgt/internal/domaincache"
	"github.com/basket/tgt/internal/tgids"
)

// MessageEntry is one rendered message in the open chat's view window.
type MessageEntry struct {
	ID        tgids.MessageId
	Sender    domaincache.MessageSender
	Content   []StyledSpan
	Timestamp int64
}

// StyledSpan is one run of text carrying a uniform style, produced by
// projecting the raw message's formatted-text entities (bold, italic,
// underline, strikethrough, code, …) onto the plain text.
type StyledSpan struct {
	Text          string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Code          bool
}

// LoadedRange is the [oldest, newest] span of message ids currently held
// by the store, derived from the current key set.
type LoadedRange struct {
	Oldest tgids.MessageId
	Newest tgids.MessageId
	Empty  bool
}

// Store is the message cache + view window for one open chat.
type Store struct {
	mu       sync.Mutex
	messages map[tgids.MessageId]*MessageEntry
	rng      LoadedRange

	openChatID            atomic.Int64
	fromMessageID         atomic.Int64
	historyLoading        atomic.Bool
	me                    atomic.Int64
	lastAcknowledgedMsgID atomic.Int64
	replyMessageID        atomic.Int64
}

// New builds an empty Store.
func New() *Store {
	s := &Store{messages: make(map[tgids.MessageId]*MessageEntry)}
	s.rng = LoadedRange{Empty: true}
	s.replyMessageID.Store(int64(tgids.MessageIdNone))
	return s
}

// InsertMessages inserts entries, updating the loaded range to the min/max
// of all ids ever seen in this batch union with the existing range.
// Map semantics mean inserting the same set twice is idempotent.
func (s *Store) InsertMessages(entries []MessageEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		cp := e
		s.messages[e.ID] = &cp
	}
	s.recomputeRangeLocked()
}

// Clear empties the store and resets the range. Called on chat switch.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make(map[tgids.MessageId]*MessageEntry)
	s.rng = LoadedRange{Empty: true}
}

// OrderedMessageIDs returns the loaded message ids in strictly ascending
// order (oldest first).
func (s *Store) OrderedMessageIDs() []tgids.MessageId {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tgids.MessageId, 0, len(s.messages))
	for id := range s.messages {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetMessage returns a copy of the entry for id, and whether it exists.
func (s *Store) GetMessage(id tgids.MessageId) (MessageEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.messages[id]
	if !ok {
		return MessageEntry{}, false
	}
	return *e, true
}

// UpdateMessage applies fn to the stored entry for id in place. Returns
// false if absent.
func (s *Store) UpdateMessage(id tgids.MessageId, fn func(*MessageEntry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.messages[id]
	if !ok {
		return false
	}
	fn(e)
	return true
}

// RemoveMessage deletes id from the store and recomputes the range from
// the remaining keys by folding — no stale range value survives.
func (s *Store) RemoveMessage(id tgids.MessageId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, id)
	s.recomputeRangeLocked()
}

// recomputeRangeLocked must be called with mu held.
func (s *Store) recomputeRangeLocked() {
	if len(s.messages) == 0 {
		s.rng = LoadedRange{Empty: true}
		return
	}
	first := true
	var lo, hi tgids.MessageId
	for id := range s.messages {
		if first {
			lo, hi = id, id
			first = false
			continue
		}
		if id < lo {
			lo = id
		}
		if id > hi {
			hi = id
		}
	}
	s.rng = LoadedRange{Oldest: lo, Newest: hi}
}

// Range returns a copy of the current loaded range.
func (s *Store) Range() LoadedRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng
}

// IsEmpty reports whether the store currently holds no messages.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Empty
}

// FromMessageIDForLoadOlder returns the oldest loaded message id, or 0 when
// the store is empty — the `from_msg_id` to pass to the next
// get_chat_history(load older) call.
func (s *Store) FromMessageIDForLoadOlder() tgids.MessageId {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Empty {
		return 0
	}
	return s.rng.Oldest
}

///////////////////////////////////////////////////////////////////////////
// CROSS-FIELD ATOMICS

// SetOpenChatID records the currently open chat id.
func (s *Store) SetOpenChatID(id tgids.ChatId) { s.openChatID.Store(int64(id)) }

// OpenChatID returns the currently open chat id.
func (s *Store) OpenChatID() tgids.ChatId { return tgids.ChatId(s.openChatID.Load()) }

// SetMe records the session's own user id (from a GetMe response).
func (s *Store) SetMe(id int64) { s.me.Store(id) }

// Me returns the session's own user id.
func (s *Store) Me() int64 { return s.me.Load() }

// SetLastAcknowledgedMessageID records the last message id the UI has
// acknowledged viewing (used to debounce ViewAllMessages calls).
func (s *Store) SetLastAcknowledgedMessageID(id tgids.MessageId) {
	s.lastAcknowledgedMsgID.Store(int64(id))
}

// LastAcknowledgedMessageID returns the last acknowledged message id.
func (s *Store) LastAcknowledgedMessageID() tgids.MessageId {
	return tgids.MessageId(s.lastAcknowledgedMsgID.Load())
}

// SetReplyMessageID records the message id the compose prompt is currently
// replying to, or tgids.MessageIdNone.
func (s *Store) SetReplyMessageID(id tgids.MessageId) { s.replyMessageID.Store(int64(id)) }

// ReplyMessageID returns the message id the compose prompt is replying to.
func (s *Store) ReplyMessageID() tgids.MessageId { return tgids.MessageId(s.replyMessageID.Load()) }

///////////////////////////////////////////////////////////////////////////
// LOAD-OLDER DISCIPLINE

// BeginLoadOlder attempts to acquire the single-flight "load older" gate.
// Returns false if a request is already outstanding — the caller must drop
// the new request rather than issuing a second one. Acquire/Release
// ordering (via sync/atomic.Bool, itself Acquire/Release under the hood)
// ensures a reader observing historyLoading==false after a prior Release
// also observes the appended entries from that load.
func (s *Store) BeginLoadOlder() bool {
	return s.historyLoading.CompareAndSwap(false, true)
}

// EndLoadOlder releases the "load older" gate.
func (s *Store) EndLoadOlder() { s.historyLoading.Store(false) }

// IsLoadingOlder reports whether a "load older" request is outstanding.
func (s *Store) IsLoadingOlder() bool { return s.historyLoading.Load() }
