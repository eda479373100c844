package search

import (
	"github.com/nikbrunner/bmtree/internal/model"
	"github.com/sahilm/fuzzy"
)

// located is a bookmark together with where it lives in the tree.
type located struct {
	bookmark *model.Bookmark
	path     []string
	parentID string
}

// bookmarkTitles implements fuzzy.Source for a flattened bookmark list.
type bookmarkTitles []located

func (bt bookmarkTitles) String(i int) string {
	return bt[i].bookmark.Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// FuzzyBookmarks searches all bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzyBookmarks(roots []*model.Folder, query string) []Result {
	if query == "" {
		return nil
	}

	var bookmarks bookmarkTitles
	var walk func(folder *model.Folder, path []string)
	walk = func(folder *model.Folder, path []string) {
		childPath := append(path[:len(path):len(path)], folder.Title)
		for _, child := range folder.Children {
			switch child.Kind {
			case model.KindBookmark:
				bookmarks = append(bookmarks, located{bookmark: child.Bookmark, path: childPath, parentID: folder.ID})
			case model.KindFolder:
				walk(child.Folder, childPath)
			}
		}
	}
	for _, root := range roots {
		walk(root, []string{})
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]Result, len(matches))
	for i, m := range matches {
		loc := bookmarks[m.Index]
		parentID := loc.parentID
		results[i] = Result{
			Node:           model.BookmarkNode(loc.bookmark),
			Path:           loc.path,
			ParentID:       &parentID,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
