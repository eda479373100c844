package model

// Clone returns a deep copy of the bookmark.
func (b *Bookmark) Clone() *Bookmark {
	if b == nil {
		return nil
	}
	c := *b
	c.IconData = cloneString(b.IconData)
	c.IconURI = cloneString(b.IconURI)
	return &c
}

// Clone returns a deep copy of the folder and its whole subtree.
func (f *Folder) Clone() *Folder {
	if f == nil {
		return nil
	}
	c := *f
	c.Children = CloneNodes(f.Children)
	return &c
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	switch n.Kind {
	case KindFolder:
		return FolderNode(n.Folder.Clone())
	case KindBookmark:
		return BookmarkNode(n.Bookmark.Clone())
	}
	return n
}

// CloneNodes deep-copies a children list. A nil list stays nil.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneFolders deep-copies a root list so that no mutable structure is
// shared with the input.
func CloneFolders(roots []*Folder) []*Folder {
	if roots == nil {
		return nil
	}
	out := make([]*Folder, len(roots))
	for i, r := range roots {
		out[i] = r.Clone()
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
