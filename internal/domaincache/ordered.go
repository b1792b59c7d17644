package domaincache

import (
	"sort"
	"strconv"
	"sync"

	"github.com/basket/tgt/internal/tgids"
)

// OrderedChat is the key of the ordered chat index: a chat id paired with
// the ChatPosition that placed it there. Equality (and therefore hashing)
// is defined over the tuple (chat_id, list, order, is_pinned, source) —
// two OrderedChat values are equal only when every one of those fields
// matches.
type OrderedChat struct {
	ChatID   tgids.ChatId
	Position ChatPosition
}

func (o OrderedChat) key() string {
	folder, _ := o.Position.List.FolderID()
	pinned := 0
	if o.Position.IsPinned {
		pinned = 1
	}
	return joinKey(o.ChatID, o.Position.List.String(), folder, o.Position.Order, pinned, o.Position.Source)
}

// Equal reports whether two OrderedChat values are identical under the
// equality contract above.
func (o OrderedChat) Equal(other OrderedChat) bool {
	return o.ChatID == other.ChatID &&
		o.Position.List.Equal(other.Position.List) &&
		o.Position.Order == other.Position.Order &&
		o.Position.IsPinned == other.Position.IsPinned &&
		o.Position.Source == other.Position.Source
}

// Less implements the total order the chat list is sorted by:
//  1. higher position.order sorts earlier (descending by order),
//  2. on equal order, higher chat_id sorts earlier,
//  3. equality only when both are identical.
func (o OrderedChat) Less(other OrderedChat) bool {
	if o.Position.Order != other.Position.Order {
		return o.Position.Order > other.Position.Order
	}
	if o.ChatID != other.ChatID {
		return o.ChatID > other.ChatID
	}
	return false
}

// orderedIndex is the sorted set of OrderedChat entries maintained in
// parallel to the Chats mapping. It holds only (chat_id, position) keys so
// it never cycles back to a Chat pointer — rebuilds always go "position
// value first, then index".
type orderedIndex struct {
	mu      sync.Mutex
	entries []OrderedChat
	seen    map[string]struct{}
}

func newOrderedIndex() *orderedIndex {
	return &orderedIndex{seen: make(map[string]struct{})}
}

// insert adds oc to the index. Panics if an equal entry is already present
// — the position-reconcile protocol guarantees this never happens in
// correct usage.
func (idx *orderedIndex) insert(oc OrderedChat) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	k := oc.key()
	if _, ok := idx.seen[k]; ok {
		panic("domaincache: ordered index insert of already-present OrderedChat")
	}
	idx.seen[k] = struct{}{}
	i := sort.Search(len(idx.entries), func(i int) bool {
		return oc.Less(idx.entries[i]) || oc.Equal(idx.entries[i])
	})
	idx.entries = append(idx.entries, OrderedChat{})
	copy(idx.entries[i+1:], idx.entries[i:])
	idx.entries[i] = oc
}

// remove removes an OrderedChat whose chat id and list match oc, ignoring
// the other position fields (the caller supplies the exact stored value in
// the reconcile protocol, but removal by chat+list is convenient for
// direct-removal call sites). Panics if no matching entry is found.
func (idx *orderedIndex) removeChatInList(chatID tgids.ChatId, list tgids.ChatListKind) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, e := range idx.entries {
		if e.ChatID == chatID && e.Position.List.Equal(list) {
			k := e.key()
			delete(idx.seen, k)
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return
		}
	}
	panic("domaincache: ordered index removal of absent OrderedChat")
}

// orderedChatIDs returns the chat ids in index order (index order already
// satisfies the Less total order).
func (idx *orderedIndex) orderedChatIDs() []tgids.ChatId {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]tgids.ChatId, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.ChatID
	}
	return out
}

// snapshot returns a defensive copy of the current entries.
func (idx *orderedIndex) snapshot() []OrderedChat {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]OrderedChat, len(idx.entries))
	copy(out, idx.entries)
	return out
}

func joinKey(chatID tgids.ChatId, list string, folder int32, order int64, pinned int, source string) string {
	// Composite key over the equality contract in the OrderedChat doc comment.
	return list + "\x1f" + strconv.FormatInt(int64(folder), 10) + "\x1f" + strconv.FormatInt(int64(chatID), 10) + "\x1f" +
		strconv.FormatInt(order, 10) + "\x1f" + strconv.Itoa(pinned) + "\x1f" + source
}
