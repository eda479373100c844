package store

import (
	"fmt"

	"github.com/nikbrunner/bmtree/internal/model"
)

// ImportMode selects how imported nodes combine with the existing forest.
type ImportMode int

const (
	// ImportReplace discards the existing forest.
	ImportReplace ImportMode = iota
	// ImportMerge adds the nodes to the selected folder.
	ImportMerge
	// ImportAlongside appends the imported roots after the existing ones.
	ImportAlongside
)

func (m ImportMode) String() string {
	switch m {
	case ImportReplace:
		return "replace"
	case ImportMerge:
		return "merge"
	case ImportAlongside:
		return "alongside"
	default:
		return fmt.Sprintf("ImportMode(%d)", int(m))
	}
}

// ParseImportMode parses "replace", "merge" or "alongside".
func ParseImportMode(s string) (ImportMode, error) {
	switch s {
	case "replace":
		return ImportReplace, nil
	case "merge":
		return ImportMerge, nil
	case "alongside":
		return ImportAlongside, nil
	}
	return 0, fmt.Errorf("unknown import mode %q", s)
}

// ImportedRootTitle names the root wrapping imported nodes that are not
// folders.
const ImportedRootTitle = "Imported"

// importRoots turns parsed top-level nodes into roots. Folders become
// roots as they are; any loose bookmarks are collected into one wrapper
// root, placed after the folders.
func importRoots(nodes []model.Node) []*model.Folder {
	var roots []*model.Folder
	var loose []model.Node
	for _, n := range nodes {
		switch n.Kind {
		case model.KindFolder:
			roots = append(roots, n.Folder)
		case model.KindBookmark:
			loose = append(loose, n)
		}
	}
	if len(loose) > 0 || len(roots) == 0 {
		wrap := model.NewRoot(ImportedRootTitle, false)
		wrap.Children = append(wrap.Children, loose...)
		roots = append(roots, wrap)
	}
	return roots
}

// Import adds parsed nodes to the forest. The store takes ownership of
// nodes. Merge needs a selected folder; without one it behaves like
// ImportAlongside. Every folder is expanded afterwards.
func (s *Store) Import(nodes []model.Node, mode ImportMode) {
	s.mu.Lock()
	defer s.unlock()

	if len(nodes) == 0 {
		s.toast("Nothing to import", ToastInfo)
		return
	}
	imported := model.Stats{}
	for _, n := range nodes {
		if n.Kind == model.KindFolder {
			st := model.CountStats([]*model.Folder{n.Folder})
			imported.Folders += st.Folders
			imported.Bookmarks += st.Bookmarks
		} else {
			imported.Bookmarks++
		}
	}

	var target *model.Folder
	if mode == ImportMerge && s.selectedID != nil {
		target = model.FindFolderByID(s.roots, *s.selectedID)
	}

	s.pushHistory()
	switch {
	case target != nil:
		target.Children = append(target.Children, nodes...)
		target.LastModified = model.NowSec()
	case mode == ImportReplace:
		s.roots = importRoots(nodes)
		s.selectedID = nil
	default:
		s.roots = append(s.roots, importRoots(nodes)...)
	}

	s.expanded = model.AllExpandedIDs(s.roots)
	s.showTreeBookmarks = true
	if s.selectedID == nil && len(s.roots) > 0 {
		s.selectID(s.roots[0].ID)
	}
	s.publish()

	s.logger.Info("imported bookmarks", "mode", mode, "folders", imported.Folders, "bookmarks", imported.Bookmarks)
	s.toast(fmt.Sprintf("Imported %d folders, %d bookmarks", imported.Folders, imported.Bookmarks), ToastSuccess)
}
