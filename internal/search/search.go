package search

import (
	"strings"

	"github.com/nikbrunner/bmtree/internal/model"
)

// Result is a single search match.
type Result struct {
	Node     model.Node // the live node, not a copy
	Path     []string   // ancestor titles from the root to the direct parent
	ParentID *string    // nil for a matching root

	// Set by FuzzyBookmarks only.
	MatchedIndexes []int
	Score          int
}

// SearchTree returns every node whose title (or, for bookmarks, href)
// contains query, case-insensitively. Results follow tree order: each
// root, then its children depth-first. A blank query matches nothing.
func SearchTree(roots []*model.Folder, query string) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}
	q := strings.ToLower(query)
	results := []Result{}

	var walk func(folder *model.Folder, path []string)
	walk = func(folder *model.Folder, path []string) {
		childPath := append(path[:len(path):len(path)], folder.Title)
		for _, child := range folder.Children {
			matched := false
			switch child.Kind {
			case model.KindBookmark:
				matched = contains(child.Bookmark.Title, q) || contains(child.Bookmark.Href, q)
			case model.KindFolder:
				matched = contains(child.Folder.Title, q)
			}
			if matched {
				parentID := folder.ID
				results = append(results, Result{Node: child, Path: childPath, ParentID: &parentID})
			}
			if child.Kind == model.KindFolder {
				walk(child.Folder, childPath)
			}
		}
	}

	for _, root := range roots {
		if contains(root.Title, q) {
			results = append(results, Result{Node: model.FolderNode(root), Path: []string{}})
		}
		walk(root, []string{})
	}

	return results
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
