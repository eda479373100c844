package model

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes between folders and bookmarks in a children list.
type Kind int

const (
	KindFolder Kind = iota
	KindBookmark
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindBookmark:
		return "bookmark"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Folder is a container for bookmarks and other folders.
// Children order is significant: it is the display and export order.
type Folder struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	AddDate               int64  `json:"addDate"`
	LastModified          int64  `json:"lastModified"`
	PersonalToolbarFolder bool   `json:"personalToolbarFolder,omitempty"`
	Children              []Node `json:"children"`
}

// Bookmark is a saved URL with an optional cached favicon.
type Bookmark struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Href     string  `json:"href"`
	AddDate  int64   `json:"addDate"`
	IconData *string `json:"iconData"` // data: URI, nil = no icon
	IconURI  *string `json:"iconUri"`  // source of IconData, nil = unknown
}

// Node is either a folder or a bookmark. Exactly one of Folder and
// Bookmark is set, selected by Kind.
type Node struct {
	Kind     Kind
	Folder   *Folder
	Bookmark *Bookmark
}

// FolderNode wraps a folder as a Node.
func FolderNode(f *Folder) Node {
	return Node{Kind: KindFolder, Folder: f}
}

// BookmarkNode wraps a bookmark as a Node.
func BookmarkNode(b *Bookmark) Node {
	return Node{Kind: KindBookmark, Bookmark: b}
}

// ID returns the node's ID regardless of kind.
func (n Node) ID() string {
	switch n.Kind {
	case KindFolder:
		return n.Folder.ID
	case KindBookmark:
		return n.Bookmark.ID
	}
	return ""
}

// Title returns the node's title regardless of kind.
func (n Node) Title() string {
	switch n.Kind {
	case KindFolder:
		return n.Folder.Title
	case KindBookmark:
		return n.Bookmark.Title
	}
	return ""
}

// IsFolder returns true if this node is a folder.
func (n Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// IsZero reports whether n is the zero Node (the not-found value).
func (n Node) IsZero() bool {
	return n.Folder == nil && n.Bookmark == nil
}

// MarshalJSON writes the node with a "type" discriminant.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case KindFolder:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Folder
		}{"folder", n.Folder})
	case KindBookmark:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Bookmark
		}{"bookmark", n.Bookmark})
	}
	return nil, fmt.Errorf("marshal node: unknown kind %v", n.Kind)
}

// UnmarshalJSON reads a node written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case "folder":
		var f Folder
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if f.Children == nil {
			f.Children = []Node{}
		}
		*n = FolderNode(&f)
	case "bookmark":
		var b Bookmark
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*n = BookmarkNode(&b)
	default:
		return fmt.Errorf("unmarshal node: unknown type %q", head.Type)
	}
	return nil
}
