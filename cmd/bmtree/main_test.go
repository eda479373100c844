package main

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/nikbrunner/bmtree/internal/model"
	"github.com/nikbrunner/bmtree/internal/store"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

var keyPattern = regexp.MustCompile(`(?m)^\s*(\S+)/\s+\[([0-9/]+)\]$`)

// printedKeys maps folder titles to the keys printFolder shows for them.
func printedKeys(roots []*model.Folder) map[string]string {
	var buf bytes.Buffer
	for i, root := range roots {
		printFolder(&buf, root, strconv.Itoa(i), 0)
	}
	keys := map[string]string{}
	for _, m := range keyPattern.FindAllStringSubmatch(buf.String(), -1) {
		keys[m[1]] = m[2]
	}
	return keys
}

func TestPrintFolder_Keys(t *testing.T) {
	sub := model.NewFolder("Sub")
	bm := model.NewBookmark(model.NewBookmarkParams{URL: "https://a.com", Title: "A"})
	bar := model.NewRoot("Bar", true)
	bar.Children = append(bar.Children, model.BookmarkNode(bm), model.FolderNode(sub))

	var buf bytes.Buffer
	printFolder(&buf, bar, "0", 0)

	assert.Equal(t, buf.String(), "Bar/ (toolbar)  [0]\n  A  <https://a.com>\n  Sub/  [0/1]\n")
}

func TestTreeKeyFindsFolderForBulk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.html")
	sub := model.NewFolder("Sub")
	bar := model.NewRoot("Bar", true)
	bar.Children = append(bar.Children,
		model.BookmarkNode(model.NewBookmark(model.NewBookmarkParams{URL: "https://a.com", Title: "A"})),
		model.FolderNode(sub))
	writeHTML(path, []*model.Folder{bar, model.NewRoot("Other", false)})

	keys := printedKeys(loadRoots(path))
	assert.Equal(t, keys["Sub"], "0/1")

	st := store.New(store.Params{})
	loadDest(st, path)
	added, skipped, err := addBulk(st, keys["Sub"], "https://x.com, X\nbadline", false)
	assert.NilError(t, err)
	assert.Equal(t, added, 1)
	assert.Equal(t, skipped, 1)
	writeHTML(path, st.Snapshot())

	got := model.FolderAtPath(loadRoots(path), keys["Sub"])
	assert.Assert(t, got != nil)
	assert.Equal(t, got.Title, "Sub")
	assert.Assert(t, is.Len(got.Children, 1))
	assert.Equal(t, got.Children[0].Bookmark.Href, "https://x.com")
}

func TestAddBulk_NewDest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.html")

	st := store.New(store.Params{})
	loadDest(st, path)
	added, _, err := addBulk(st, "0", "https://x.com", false)

	assert.NilError(t, err)
	assert.Equal(t, added, 1)
	root := st.Snapshot()[0]
	assert.Equal(t, root.Title, store.DefaultRootTitle)
	assert.Equal(t, root.Children[0].Bookmark.Href, "https://x.com")
}

func TestAddBulk_UnknownKey(t *testing.T) {
	st := store.New(store.Params{})
	st.Init()

	for _, key := range []string{"1", "0/0", "abc"} {
		_, _, err := addBulk(st, key, "https://x.com", false)
		assert.ErrorContains(t, err, "no folder at", key)
	}
	assert.Check(t, !st.CanUndo())
}
