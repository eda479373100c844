package importer

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtree/internal/model"
)

// moz_bookmarks.type values.
const (
	placesTypeBookmark  = 1
	placesTypeFolder    = 2
	placesTypeSeparator = 3
)

const placesTagsGUID = "tags________"

// placesRootTitles names the built-in roots, whose stored titles are
// often empty.
var placesRootTitles = map[string]string{
	"menu________": "Bookmarks Menu",
	"toolbar_____": "Bookmarks Toolbar",
	"unfiled_____": "Other Bookmarks",
	"mobile______": "Mobile Bookmarks",
	"root________": "Bookmarks",
	placesTagsGUID: "Tags",
}

type placesRow struct {
	id           int64
	kind         int
	parent       int64
	title        string
	dateAdded    int64 // microseconds
	lastModified int64 // microseconds
	guid         string
	url          string
	placeTitle   string
}

// ReadFirefoxPlaces reads the bookmark tree out of a Firefox
// places.sqlite database. Each built-in root (menu, toolbar, other,
// mobile) becomes a root folder; tags and separators are skipped.
// The database is only read.
func ReadFirefoxPlaces(path string) ([]*model.Folder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("open places: %w", err)
	}

	rows, err := db.Query(`
		SELECT b.id, b.type, COALESCE(b.parent, 0), COALESCE(b.title, ''),
		       COALESCE(b.dateAdded, 0), COALESCE(b.lastModified, 0), COALESCE(b.guid, ''),
		       COALESCE(p.url, ''), COALESCE(p.title, '')
		FROM moz_bookmarks b
		LEFT JOIN moz_places p ON p.id = b.fk
		ORDER BY b.parent, b.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	children := make(map[int64][]placesRow)
	var root *placesRow
	for rows.Next() {
		var r placesRow
		if err := rows.Scan(
			&r.id, &r.kind, &r.parent, &r.title,
			&r.dateAdded, &r.lastModified, &r.guid,
			&r.url, &r.placeTitle,
		); err != nil {
			return nil, fmt.Errorf("scan places: %w", err)
		}
		if r.guid == "root________" || (r.parent == 0 && r.kind == placesTypeFolder) {
			rr := r
			root = &rr
			continue
		}
		children[r.parent] = append(children[r.parent], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if root == nil {
		return []*model.Folder{}, nil
	}

	visited := map[int64]bool{root.id: true}
	roots := []*model.Folder{}
	for _, r := range children[root.id] {
		if r.kind != placesTypeFolder || r.guid == placesTagsGUID {
			continue
		}
		f := placesFolder(r, children, visited)
		if r.guid == "toolbar_____" {
			f.PersonalToolbarFolder = true
		}
		roots = append(roots, f)
	}
	return roots, nil
}

func placesFolder(r placesRow, children map[int64][]placesRow, visited map[int64]bool) *model.Folder {
	visited[r.id] = true

	title := r.title
	if title == "" {
		title = placesRootTitles[r.guid]
	}
	f := model.NewFolder(title)
	if add := r.dateAdded / 1_000_000; add > 0 {
		f.AddDate = add
		f.LastModified = add
	}
	if lm := r.lastModified / 1_000_000; lm > 0 {
		f.LastModified = lm
	}

	for _, c := range children[r.id] {
		if visited[c.id] {
			continue
		}
		switch c.kind {
		case placesTypeFolder:
			f.Children = append(f.Children, model.FolderNode(placesFolder(c, children, visited)))
		case placesTypeBookmark:
			if c.url == "" {
				continue
			}
			f.Children = append(f.Children, model.BookmarkNode(placesBookmark(c)))
		case placesTypeSeparator:
			// no Netscape equivalent
		}
	}
	return f
}

func placesBookmark(r placesRow) *model.Bookmark {
	title := r.title
	if title == "" {
		title = r.placeTitle
	}
	if title == "" {
		title = r.url
	}
	b := model.NewBookmark(model.NewBookmarkParams{URL: r.url, Title: title})
	if add := r.dateAdded / 1_000_000; add > 0 {
		b.AddDate = add
	}
	return b
}
