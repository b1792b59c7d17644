// Package tgids defines the opaque identifier types shared across the
// Telegram domain packages: chat ids, message ids, and chat list kinds.
package tgids

import "fmt"

// ChatId identifies a chat. The zero value is the distinguished "none" id.
type ChatId int64

// ChatIdNone is the distinguished absent ChatId.
const ChatIdNone ChatId = 0

// IsNone reports whether c is the "none" chat id.
func (c ChatId) IsNone() bool { return c == ChatIdNone }

func (c ChatId) String() string { return fmt.Sprintf("%d", int64(c)) }

// MessageId identifies a message within a chat. The distinguished "none"
// value is -1, matching the native client's convention.
type MessageId int64

// MessageIdNone is the distinguished absent MessageId.
const MessageIdNone MessageId = -1

// IsNone reports whether m is the "none" message id.
func (m MessageId) IsNone() bool { return m == MessageIdNone }

func (m MessageId) String() string { return fmt.Sprintf("%d", int64(m)) }

// ChatListKind is a tagged union over {Main, Archive, Folder(id)}.
type ChatListKind struct {
	kind     chatListTag
	folderID int32
}

type chatListTag uint8

const (
	chatListMain chatListTag = iota
	chatListArchive
	chatListFolder
)

// MainList is the Main chat list.
var MainList = ChatListKind{kind: chatListMain}

// ArchiveList is the Archive chat list.
var ArchiveList = ChatListKind{kind: chatListArchive}

// FolderList returns the chat list for a given folder id.
func FolderList(folderID int32) ChatListKind {
	return ChatListKind{kind: chatListFolder, folderID: folderID}
}

// IsMain reports whether k is the Main list.
func (k ChatListKind) IsMain() bool { return k.kind == chatListMain }

// IsArchive reports whether k is the Archive list.
func (k ChatListKind) IsArchive() bool { return k.kind == chatListArchive }

// FolderID returns the folder id and true if k is a Folder list.
func (k ChatListKind) FolderID() (int32, bool) {
	if k.kind == chatListFolder {
		return k.folderID, true
	}
	return 0, false
}

func (k ChatListKind) String() string {
	switch k.kind {
	case chatListMain:
		return "Main"
	case chatListArchive:
		return "Archive"
	case chatListFolder:
		return fmt.Sprintf("Folder(%d)", k.folderID)
	default:
		return "Unknown"
	}
}

// Equal reports whether two ChatListKind values denote the same list.
func (k ChatListKind) Equal(other ChatListKind) bool {
	return k.kind == other.kind && k.folderID == other.folderID
}
