package model

import (
	"strconv"
	"strings"
	"time"
)

// NowSec returns the current time in seconds since epoch.
func NowSec() int64 {
	return time.Now().Unix()
}

// NewRoot creates a root-level folder, optionally marked as the toolbar.
func NewRoot(title string, toolbar bool) *Folder {
	f := NewFolder(title)
	f.PersonalToolbarFolder = toolbar
	return f
}

// NewFolder creates an empty folder with a fresh ID and both dates set.
func NewFolder(title string) *Folder {
	now := NowSec()
	return &Folder{
		ID:           NewID(),
		Title:        title,
		AddDate:      now,
		LastModified: now,
		Children:     []Node{},
	}
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL      string
	Title    string
	IconData *string
	IconURI  *string
}

// NewBookmark creates a Bookmark with a fresh ID and the current time.
func NewBookmark(params NewBookmarkParams) *Bookmark {
	return &Bookmark{
		ID:       NewID(),
		Title:    params.Title,
		Href:     params.URL,
		AddDate:  NowSec(),
		IconData: cloneString(params.IconData),
		IconURI:  cloneString(params.IconURI),
	}
}

// Crumb is one segment of a breadcrumb path.
type Crumb struct {
	ID    string
	Title string
}

// Stats holds folder and bookmark totals for a forest.
type Stats struct {
	Folders   int
	Bookmarks int
}

// FindNodeByID finds a node anywhere in the forest. Roots are searched in
// order, each one depth-first; a root matches its own ID.
func FindNodeByID(roots []*Folder, id string) (Node, bool) {
	for _, root := range roots {
		if n, ok := findInFolder(root, id); ok {
			return n, true
		}
	}
	return Node{}, false
}

func findInFolder(folder *Folder, id string) (Node, bool) {
	if folder.ID == id {
		return FolderNode(folder), true
	}
	for _, child := range folder.Children {
		switch child.Kind {
		case KindFolder:
			if n, ok := findInFolder(child.Folder, id); ok {
				return n, true
			}
		case KindBookmark:
			if child.Bookmark.ID == id {
				return child, true
			}
		}
	}
	return Node{}, false
}

// FindFolderByID is FindNodeByID restricted to folders.
func FindFolderByID(roots []*Folder, id string) *Folder {
	n, ok := FindNodeByID(roots, id)
	if !ok || n.Kind != KindFolder {
		return nil
	}
	return n.Folder
}

// FindParent returns the folder whose direct children contain id.
// Returns nil for roots and unknown IDs.
func FindParent(roots []*Folder, id string) *Folder {
	for _, root := range roots {
		if p := findParentInFolder(root, id); p != nil {
			return p
		}
	}
	return nil
}

func findParentInFolder(folder *Folder, id string) *Folder {
	for _, child := range folder.Children {
		if child.ID() == id {
			return folder
		}
		if child.Kind == KindFolder {
			if p := findParentInFolder(child.Folder, id); p != nil {
				return p
			}
		}
	}
	return nil
}

// IndexOf returns the position of id among the folder's direct children,
// or -1.
func (f *Folder) IndexOf(id string) int {
	for i, child := range f.Children {
		if child.ID() == id {
			return i
		}
	}
	return -1
}

// Breadcrumb returns the path from the owning root down to and including
// the target node. Empty if not found.
func Breadcrumb(roots []*Folder, id string) []Crumb {
	for _, root := range roots {
		path := []Crumb{{ID: root.ID, Title: root.Title}}
		if found := breadcrumbPath(root, id, path); found != nil {
			return found
		}
	}
	return []Crumb{}
}

func breadcrumbPath(folder *Folder, id string, path []Crumb) []Crumb {
	if folder.ID == id {
		return path
	}
	for _, child := range folder.Children {
		next := append(path[:len(path):len(path)], Crumb{ID: child.ID(), Title: child.Title()})
		switch child.Kind {
		case KindFolder:
			if found := breadcrumbPath(child.Folder, id, next); found != nil {
				return found
			}
		case KindBookmark:
			if child.Bookmark.ID == id {
				return next
			}
		}
	}
	return nil
}

// ExpandPathToNode returns the folder IDs from the owning root down to the
// target, i.e. the folders a tree view must open to show it. A bookmark
// target contributes only its ancestors.
func ExpandPathToNode(roots []*Folder, id string) []string {
	crumbs := Breadcrumb(roots, id)
	if n, ok := FindNodeByID(roots, id); ok && n.Kind == KindBookmark && len(crumbs) > 0 {
		crumbs = crumbs[:len(crumbs)-1]
	}
	ids := make([]string, len(crumbs))
	for i, c := range crumbs {
		ids[i] = c.ID
	}
	return ids
}

// CountStats counts every folder (roots included) and bookmark.
func CountStats(roots []*Folder) Stats {
	var s Stats
	for _, root := range roots {
		countFolder(root, &s)
	}
	return s
}

func countFolder(folder *Folder, s *Stats) {
	s.Folders++
	for _, child := range folder.Children {
		switch child.Kind {
		case KindFolder:
			countFolder(child.Folder, s)
		case KindBookmark:
			s.Bookmarks++
		}
	}
}

// AllExpandedIDs maps every folder ID in the forest to true.
func AllExpandedIDs(roots []*Folder) map[string]bool {
	ids := make(map[string]bool)
	var walk func(*Folder)
	walk = func(f *Folder) {
		ids[f.ID] = true
		for _, child := range f.Children {
			if child.Kind == KindFolder {
				walk(child.Folder)
			}
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return ids
}

// Contains reports whether id is the folder itself or anywhere below it.
func (f *Folder) Contains(id string) bool {
	_, ok := findInFolder(f, id)
	return ok
}

// FolderAtPath resolves a position key such as "0/2": the first number
// picks a root, each later one a child of the folder before it. Keys
// survive a save and reload where IDs do not. nil when the key is
// malformed, out of range or lands on a bookmark.
func FolderAtPath(roots []*Folder, key string) *Folder {
	parts := strings.Split(key, "/")
	i, err := strconv.Atoi(parts[0])
	if err != nil || i < 0 || i >= len(roots) {
		return nil
	}
	folder := roots[i]
	for _, p := range parts[1:] {
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 || i >= len(folder.Children) {
			return nil
		}
		child := folder.Children[i]
		if child.Kind != KindFolder {
			return nil
		}
		folder = child.Folder
	}
	return folder
}
