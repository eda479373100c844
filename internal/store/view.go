package store

import "github.com/nikbrunner/bmtree/internal/model"

// Init makes sure there is something to show: an empty store gets a
// default root, and a populated one without a selection selects its
// first root.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.unlock()

	if len(s.roots) == 0 {
		root := model.NewRoot(s.rootTitle, false)
		s.roots = []*model.Folder{root}
		s.expanded = map[string]bool{root.ID: true}
		s.selectID(root.ID)
		s.publish()
		return
	}
	if s.selectedID == nil {
		s.expanded[s.roots[0].ID] = true
		s.selectID(s.roots[0].ID)
	}
}

// Load installs roots as the forest without recording history. Earlier
// history is discarded.
func (s *Store) Load(roots []*model.Folder) {
	s.mu.Lock()
	defer s.unlock()

	if roots == nil {
		roots = []*model.Folder{}
	}
	s.history.Clear()
	s.roots = roots
	s.selectedID = nil
	s.expanded = map[string]bool{}
	if len(roots) > 0 {
		s.expanded[roots[0].ID] = true
		s.selectID(roots[0].ID)
	}
	s.publish()
}

// Reset discards the forest and its history and starts over with a single
// default root.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.unlock()

	s.history.Clear()
	root := model.NewRoot(s.rootTitle, false)
	s.roots = []*model.Folder{root}
	s.expanded = map[string]bool{root.ID: true}
	s.selectID(root.ID)
	s.showTreeBookmarks = true
	s.publish()
	s.toast("Reset complete", ToastSuccess)
}

// SelectNode selects id and opens every folder on the way to it.
func (s *Store) SelectNode(id string) {
	s.mu.Lock()
	defer s.unlock()

	if _, ok := model.FindNodeByID(s.roots, id); !ok {
		return
	}
	s.selectID(id)
	for _, fid := range model.ExpandPathToNode(s.roots, id) {
		s.expanded[fid] = true
	}
}

// ToggleExpanded opens or closes a single folder.
func (s *Store) ToggleExpanded(id string) {
	s.mu.Lock()
	defer s.unlock()

	if model.FindFolderByID(s.roots, id) == nil {
		return
	}
	s.expanded[id] = !s.expanded[id]
}

// ExpandAll opens every folder and shows bookmarks in the tree.
func (s *Store) ExpandAll() {
	s.mu.Lock()
	defer s.unlock()

	s.expanded = model.AllExpandedIDs(s.roots)
	s.showTreeBookmarks = true
}

// CollapseAll opens every folder but hides bookmarks, leaving a tree of
// folders only.
func (s *Store) CollapseAll() {
	s.mu.Lock()
	defer s.unlock()

	s.expanded = model.AllExpandedIDs(s.roots)
	s.showTreeBookmarks = false
}

// SetSearchQuery sets the query used by SearchResults.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.unlock()
	s.searchQuery = q
}
