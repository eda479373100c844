package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/nikbrunner/bmtree/internal/model"
)

// sqliteMagic starts every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// ReadFile imports a bookmark file, detecting its format from the
// content: a SQLite database is read as Firefox places, anything else is
// parsed as Netscape HTML.
func ReadFile(path string) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(len(sqliteMagic))
	if bytes.Equal(head, sqliteMagic) {
		roots, err := ReadFirefoxPlaces(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		nodes := make([]model.Node, len(roots))
		for i, r := range roots {
			nodes[i] = model.FolderNode(r)
		}
		return nodes, nil
	}

	nodes, err := ParseHTMLReader(br)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return nodes, nil
}
