package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtree/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

const header = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

// escaper covers the five characters that are unsafe in attribute values
// and element text.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func esc(s string) string {
	return escaper.Replace(s)
}

// ExportHTML exports the forest to Netscape bookmark HTML format.
func ExportHTML(roots []*model.Folder) string {
	var b strings.Builder

	b.WriteString(header)
	for _, root := range roots {
		writeFolder(&b, root, 1)
	}
	b.WriteString("</DL><p>")

	return b.String()
}

// writeFolder writes a folder header and its nested list, recursively.
func writeFolder(b *strings.Builder, folder *model.Folder, indent int) {
	prefix := strings.Repeat("    ", indent)

	lastModified := folder.LastModified
	if lastModified == 0 {
		lastModified = folder.AddDate
	}
	attrs := fmt.Sprintf(`ADD_DATE="%d" LAST_MODIFIED="%d"`, folder.AddDate, lastModified)
	if folder.PersonalToolbarFolder {
		attrs += ` PERSONAL_TOOLBAR_FOLDER="true"`
	}

	fmt.Fprintf(b, "%s<DT><H3 %s>%s</H3>\n", prefix, attrs, esc(folder.Title))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)

	for _, child := range folder.Children {
		switch child.Kind {
		case model.KindFolder:
			writeFolder(b, child.Folder, indent+1)
		case model.KindBookmark:
			writeBookmark(b, child.Bookmark, indent+1)
		}
	}

	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}

func writeBookmark(b *strings.Builder, bookmark *model.Bookmark, indent int) {
	prefix := strings.Repeat("    ", indent)

	attrs := fmt.Sprintf(`HREF="%s" ADD_DATE="%d"`, esc(bookmark.Href), bookmark.AddDate)
	if bookmark.IconData != nil && *bookmark.IconData != "" {
		attrs += fmt.Sprintf(` ICON="%s"`, esc(*bookmark.IconData))
	}
	if bookmark.IconURI != nil && *bookmark.IconURI != "" {
		attrs += fmt.Sprintf(` ICON_URI="%s"`, esc(*bookmark.IconURI))
	}

	text := bookmark.Title
	if text == "" {
		text = bookmark.Href
	}
	fmt.Fprintf(b, "%s<DT><A %s>%s</A>\n", prefix, attrs, esc(text))
}
