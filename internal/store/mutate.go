package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikbrunner/bmtree/internal/model"
)

// Edit holds the fields EditNode changes. Nil fields are left alone; Href
// only applies to bookmarks.
type Edit struct {
	Title *string
	Href  *string
}

func rootIndex(roots []*model.Folder, id string) int {
	return slices.IndexFunc(roots, func(r *model.Folder) bool { return r.ID == id })
}

// AddFolder creates a subfolder inside parentID and returns its ID.
func (s *Store) AddFolder(parentID, name string) (string, bool) {
	s.mu.Lock()
	defer s.unlock()

	parent := model.FindFolderByID(s.roots, parentID)
	if parent == nil {
		return "", false
	}

	s.pushHistory()
	folder := model.NewFolder(name)
	parent.Children = append(parent.Children, model.FolderNode(folder))
	parent.LastModified = model.NowSec()
	s.expanded[parentID] = true
	s.publish()
	s.toast("Folder added", ToastSuccess)
	return folder.ID, true
}

// AddBookmark creates a bookmark inside parentID and returns its ID. An
// empty title falls back to the URL's host. With fetchIcon set, an http(s)
// URL gets its favicon fetched in the background.
func (s *Store) AddBookmark(parentID, rawURL, title string, fetchIcon bool) (string, bool) {
	s.mu.Lock()
	defer s.unlock()

	parent := model.FindFolderByID(s.roots, parentID)
	if parent == nil {
		return "", false
	}
	if title == "" {
		title = model.TitleFromURL(rawURL)
	}

	s.pushHistory()
	bm := model.NewBookmark(model.NewBookmarkParams{URL: rawURL, Title: title})
	parent.Children = append(parent.Children, model.BookmarkNode(bm))
	parent.LastModified = model.NowSec()
	s.expanded[parentID] = true
	s.queueIcon(bm, fetchIcon)
	s.publish()
	s.toast("Bookmark added", ToastSuccess)
	return bm.ID, true
}

func (s *Store) queueIcon(bm *model.Bookmark, fetch bool) {
	if fetch && s.icons != nil && model.IsHTTPURL(bm.Href) {
		s.iconJobs = append(s.iconJobs, iconJob{bookmarkID: bm.ID, url: bm.Href})
	}
}

// parseBulkLine splits "url[, title]". ok is false when the URL part is
// empty or has neither a '.' nor a ':', so "example.com" passes and a
// bare word does not.
func parseBulkLine(line string) (rawURL, title string, ok bool) {
	rawURL, title, _ = strings.Cut(line, ",")
	rawURL = strings.TrimSpace(rawURL)
	title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title), ","))

	if !strings.ContainsAny(rawURL, ".:") {
		return "", "", false
	}
	if title == "" {
		title = model.TitleFromURL(rawURL)
	}
	return rawURL, title, true
}

// BulkAdd adds one bookmark per "url[, title]" line of text to parentID.
// Blank lines are ignored; lines without a usable URL are counted as
// skipped. The whole batch is a single undo step.
func (s *Store) BulkAdd(parentID, text string, fetchIcons bool) (added, skipped int) {
	s.mu.Lock()
	defer s.unlock()

	parent := model.FindFolderByID(s.roots, parentID)
	if parent == nil {
		return 0, 0
	}

	var bookmarks []*model.Bookmark
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rawURL, title, ok := parseBulkLine(line)
		if !ok {
			skipped++
			continue
		}
		bookmarks = append(bookmarks, model.NewBookmark(model.NewBookmarkParams{URL: rawURL, Title: title}))
	}
	if len(bookmarks) == 0 {
		if skipped > 0 {
			s.toast("No valid URLs found", ToastError)
		}
		return 0, skipped
	}

	s.pushHistory()
	for _, bm := range bookmarks {
		parent.Children = append(parent.Children, model.BookmarkNode(bm))
		s.queueIcon(bm, fetchIcons)
	}
	parent.LastModified = model.NowSec()
	s.expanded[parentID] = true
	s.publish()

	added = len(bookmarks)
	msg := fmt.Sprintf("Added %d bookmark%s", added, plural(added))
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d line%s", skipped, plural(skipped))
	}
	s.toast(msg, ToastSuccess)
	return added, skipped
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// DeleteNode removes a root or any node below one. If the selection was
// the deleted node or inside it, the parent is selected instead; for a
// root, the first remaining root, or nothing.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	defer s.unlock()

	n, ok := model.FindNodeByID(s.roots, id)
	if !ok {
		return
	}
	reselect := false
	if s.selectedID != nil {
		reselect = *s.selectedID == id || (n.Kind == model.KindFolder && n.Folder.Contains(*s.selectedID))
	}

	if i := rootIndex(s.roots, id); i >= 0 {
		s.pushHistory()
		s.roots = slices.Concat(s.roots[:i], s.roots[i+1:])
		if reselect {
			s.selectedID = nil
			if len(s.roots) > 0 {
				s.selectID(s.roots[0].ID)
			}
		}
	} else {
		parent := model.FindParent(s.roots, id)
		idx := parent.IndexOf(id)
		s.pushHistory()
		parent.Children = slices.Delete(parent.Children, idx, idx+1)
		parent.LastModified = model.NowSec()
		if reselect {
			s.selectID(parent.ID)
		}
	}
	s.publish()
	s.toast("Deleted", ToastSuccess)
}

// EditNode updates a node's title and, for bookmarks, its href. The
// folder holding the change gets a new LastModified.
func (s *Store) EditNode(id string, edit Edit) {
	s.mu.Lock()
	defer s.unlock()

	n, ok := model.FindNodeByID(s.roots, id)
	if !ok {
		return
	}

	s.pushHistory()
	switch n.Kind {
	case model.KindFolder:
		if edit.Title != nil {
			n.Folder.Title = *edit.Title
		}
		n.Folder.LastModified = model.NowSec()
	case model.KindBookmark:
		if edit.Title != nil {
			n.Bookmark.Title = *edit.Title
		}
		if edit.Href != nil {
			n.Bookmark.Href = *edit.Href
		}
		if parent := model.FindParent(s.roots, id); parent != nil {
			parent.LastModified = model.NowSec()
		}
	}
	s.publish()
}

// ReorderChildren replaces a folder's children with a new ordering. It is
// a no-op when the new list would put the folder inside itself.
func (s *Store) ReorderChildren(parentID string, children []model.Node) {
	s.mu.Lock()
	defer s.unlock()

	parent := model.FindFolderByID(s.roots, parentID)
	if parent == nil {
		return
	}
	for _, child := range children {
		if child.Kind == model.KindFolder && child.Folder.Contains(parentID) {
			return
		}
	}

	s.pushHistory()
	parent.Children = append([]model.Node{}, children...)
	parent.LastModified = model.NowSec()
	s.publish()
}

// ReorderRoots replaces the root list with a new ordering.
func (s *Store) ReorderRoots(roots []*model.Folder) {
	s.mu.Lock()
	defer s.unlock()

	s.pushHistory()
	s.roots = append([]*model.Folder{}, roots...)
	s.publish()
}

// MoveToParent moves a node out of its folder into the grandparent,
// directly after the folder it came from. Nodes directly under a root
// have no grandparent and stay put.
func (s *Store) MoveToParent(id string) {
	s.mu.Lock()
	defer s.unlock()

	parent := model.FindParent(s.roots, id)
	if parent == nil {
		return
	}
	grandparent := model.FindParent(s.roots, parent.ID)
	if grandparent == nil {
		return
	}
	idx := parent.IndexOf(id)

	s.pushHistory()
	node := parent.Children[idx]
	parent.Children = slices.Delete(parent.Children, idx, idx+1)
	parent.LastModified = model.NowSec()

	at := grandparent.IndexOf(parent.ID) + 1
	grandparent.Children = slices.Insert(grandparent.Children, at, node)
	grandparent.LastModified = model.NowSec()
	s.publish()
	s.toast("Moved to parent folder", ToastSuccess)
}

// AddRoot appends a new root folder, selects it and returns its ID.
func (s *Store) AddRoot(name string, toolbar bool) string {
	s.mu.Lock()
	defer s.unlock()

	s.pushHistory()
	root := model.NewRoot(name, toolbar)
	s.roots = append(s.roots, root)
	s.expanded[root.ID] = true
	s.selectID(root.ID)
	s.publish()
	s.toast("Root folder added", ToastSuccess)
	return root.ID
}

// Undo restores the state before the last mutation.
func (s *Store) Undo() error {
	s.mu.Lock()
	defer s.unlock()

	entry, err := s.history.Undo(s.roots, s.selectedID)
	if err != nil {
		return err
	}
	s.roots = entry.Roots
	s.selectedID = entry.SelectedID
	s.publish()
	s.toast("Undone", ToastInfo)
	return nil
}

// Redo reapplies the last undone mutation.
func (s *Store) Redo() error {
	s.mu.Lock()
	defer s.unlock()

	entry, err := s.history.Redo(s.roots, s.selectedID)
	if err != nil {
		return err
	}
	s.roots = entry.Roots
	s.selectedID = entry.SelectedID
	s.publish()
	s.toast("Redone", ToastInfo)
	return nil
}
