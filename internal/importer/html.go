package importer

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nikbrunner/bmtree/internal/model"
	"golang.org/x/net/html"
)

// tokenKind is the small vocabulary the bookmark parser understands.
// Everything else in the document is dropped by the lexer.
type tokenKind int

const (
	tokListOpen  tokenKind = iota // <DL>
	tokListClose                  // </DL>
	tokTerm                       // <DT> / <DD>, carries no nesting
	tokHeader                     // <H3 ...>title</H3>
	tokAnchor                     // <A ...>text</A>
)

type token struct {
	kind  tokenKind
	attrs map[string]string // lower-cased keys, decoded values
	text  string            // decoded inline text, trimmed
}

func (t token) attr(name string) string {
	return t.attrs[name]
}

func (t token) hasAttr(name string) bool {
	_, ok := t.attrs[name]
	return ok
}

// ParseHTML parses a Netscape bookmark HTML document and returns the
// top-level nodes. Unrecognized markup is skipped; it never fails.
func ParseHTML(src string) []model.Node {
	nodes, _ := ParseHTMLReader(strings.NewReader(src))
	return nodes
}

// ParseHTMLReader is ParseHTML over a reader. The only errors returned
// come from reading r.
func ParseHTMLReader(r io.Reader) ([]model.Node, error) {
	tokens, err := lex(r)
	if err != nil {
		return nil, err
	}
	return build(tokens), nil
}

// lex reduces the HTML token stream to bookmark tokens. Comments and
// doctype are dropped; tag and attribute names are case-insensitive. A
// header or anchor missing its end tag is closed by the next structural
// tag.
func lex(r io.Reader) ([]token, error) {
	z := html.NewTokenizer(r)

	var tokens []token
	var pending *token
	var text strings.Builder

	flush := func() {
		if pending == nil {
			return
		}
		pending.text = strings.TrimSpace(text.String())
		tokens = append(tokens, *pending)
		pending = nil
		text.Reset()
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			flush()
			return tokens, nil
		}

		tok := z.Token()
		switch tt {
		case html.TextToken:
			if pending != nil {
				text.WriteString(tok.Data)
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.Data {
			case "dl":
				flush()
				tokens = append(tokens, token{kind: tokListOpen})
			case "dt", "dd":
				flush()
				tokens = append(tokens, token{kind: tokTerm})
			case "h3":
				flush()
				pending = &token{kind: tokHeader, attrs: attrMap(tok.Attr)}
			case "a":
				flush()
				pending = &token{kind: tokAnchor, attrs: attrMap(tok.Attr)}
			}

		case html.EndTagToken:
			switch tok.Data {
			case "dl":
				flush()
				tokens = append(tokens, token{kind: tokListClose})
			case "h3":
				if pending != nil && pending.kind == tokHeader {
					flush()
				}
			case "a":
				if pending != nil && pending.kind == tokAnchor {
					flush()
				}
			}
		}
	}
}

func attrMap(attrs []html.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if _, dup := m[key]; !dup {
			m[key] = a.Val
		}
	}
	return m
}

// frame is one level of the insertion stack. A nil folder targets the
// top-level output.
type frame struct {
	folder *model.Folder
}

// build runs the nesting state machine over the token stream.
func build(tokens []token) []model.Node {
	roots := []model.Node{}
	stack := []frame{{}}
	var last *model.Node // most recently emitted node at the current level

	emit := func(n model.Node) {
		top := stack[len(stack)-1]
		if top.folder == nil {
			roots = append(roots, n)
		} else {
			top.folder.Children = append(top.folder.Children, n)
		}
		last = &n
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokTerm:
			// carries no nesting information

		case tokListOpen:
			target := stack[len(stack)-1]
			if last != nil && last.Kind == model.KindFolder {
				target = frame{folder: last.Folder}
			}
			stack = append(stack, target)
			last = nil

		case tokListClose:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			last = nil

		case tokHeader:
			emit(model.FolderNode(folderFromToken(tok)))

		case tokAnchor:
			if b := bookmarkFromToken(tok); b != nil {
				emit(model.BookmarkNode(b))
			}
		}
	}

	return roots
}

func folderFromToken(tok token) *model.Folder {
	f := model.NewFolder(tok.text)
	if add, ok := parsePositive(tok.attr("add_date")); ok {
		f.AddDate = add
		f.LastModified = add
	}
	if lm, ok := parsePositive(tok.attr("last_modified")); ok {
		f.LastModified = lm
	}
	if tok.hasAttr("personal_toolbar_folder") {
		f.PersonalToolbarFolder = true
	}
	return f
}

// bookmarkFromToken returns nil for anchors without an HREF.
func bookmarkFromToken(tok token) *model.Bookmark {
	href := tok.attr("href")
	if href == "" {
		return nil
	}

	title := tok.text
	if title == "" {
		title = href
	}

	b := model.NewBookmark(model.NewBookmarkParams{
		URL:      href,
		Title:    title,
		IconData: optional(tok.attr("icon")),
		IconURI:  optional(tok.attr("icon_uri")),
	})
	if add, ok := parsePositive(tok.attr("add_date")); ok {
		b.AddDate = add
	}
	return b
}

func parsePositive(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
