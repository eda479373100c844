package model_test

import (
	"encoding/json"
	"testing"

	"github.com/nikbrunner/bmtree/internal/model"
	"gotest.tools/v3/assert"
)

func TestCloneFolders_Independent(t *testing.T) {
	roots := testForest()
	clone := model.CloneFolders(roots)

	assert.DeepEqual(t, clone, roots)

	// Mutate every level of the source; the clone must not change.
	roots[0].Title = "changed"
	roots[0].Children[0].Folder.Children[0].Folder.Title = "changed"
	*roots[0].Children[0].Folder.Children[0].Folder.Children[0].Bookmark.IconData = "changed"
	roots[0].Children = append(roots[0].Children, model.BookmarkNode(&model.Bookmark{ID: "new"}))

	assert.Equal(t, clone[0].Title, "Bar")
	assert.Equal(t, clone[0].Children[0].Folder.Children[0].Folder.Title, "Go")
	assert.Equal(t, *clone[0].Children[0].Folder.Children[0].Folder.Children[0].Bookmark.IconData, "data:image/png;base64,AA==")
	assert.Equal(t, len(clone[0].Children), 2)
}

func TestClone_PreservesNils(t *testing.T) {
	b := &model.Bookmark{ID: "b", Title: "t", Href: "h"}
	c := b.Clone()
	assert.Check(t, c.IconData == nil)
	assert.Check(t, c.IconURI == nil)
	assert.Check(t, c != b)

	assert.Check(t, model.CloneFolders(nil) == nil)
	assert.Check(t, (*model.Folder)(nil).Clone() == nil)
}

func TestNode_JSONRoundTrip(t *testing.T) {
	roots := testForest()

	data, err := json.Marshal(roots)
	assert.NilError(t, err)

	var got []*model.Folder
	assert.NilError(t, json.Unmarshal(data, &got))
	assert.DeepEqual(t, got, roots)
}

func TestNode_JSONDiscriminant(t *testing.T) {
	n := model.BookmarkNode(&model.Bookmark{ID: "b1", Title: "A", Href: "https://a.com"})

	data, err := json.Marshal(n)
	assert.NilError(t, err)

	var raw map[string]any
	assert.NilError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, raw["type"], "bookmark")
	assert.Equal(t, raw["href"], "https://a.com")
	assert.Check(t, raw["iconData"] == nil)

	var bad model.Node
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"type":"tag"}`), &bad), "unknown type")
}
