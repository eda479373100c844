package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmtree/internal/config"
	"github.com/nikbrunner/bmtree/internal/exporter"
	"github.com/nikbrunner/bmtree/internal/favicon"
	"github.com/nikbrunner/bmtree/internal/importer"
	"github.com/nikbrunner/bmtree/internal/model"
	"github.com/nikbrunner/bmtree/internal/picker"
	"github.com/nikbrunner/bmtree/internal/search"
	"github.com/nikbrunner/bmtree/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
	case "stats":
		requireArgs(args, 1, "bmtree stats <file>")
		runStats(args[0])
	case "tree":
		requireArgs(args, 1, "bmtree tree <file> [--json]")
		runTree(args[0], len(args) > 1 && args[1] == "--json")
	case "search":
		requireArgs(args, 2, "bmtree search <file> <query>")
		runSearch(args[0], strings.Join(args[1:], " "))
	case "import":
		requireArgs(args, 2, "bmtree import <dest.html> <src> [replace|merge|alongside]")
		mode := "alongside"
		if len(args) > 2 {
			mode = args[2]
		}
		runImport(args[0], args[1], mode)
	case "bulk":
		requireArgs(args, 2, "bmtree bulk <dest.html> <folder> [--icons] < urls.txt")
		runBulk(args[0], args[1], len(args) > 2 && args[2] == "--icons")
	case "export":
		requireArgs(args, 1, "bmtree export <src> [path]")
		var outputPath string
		if len(args) > 1 {
			outputPath = args[1]
		}
		runExport(args[0], outputPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `bmtree - bookmark tree tool for Netscape bookmark files

Usage:
  bmtree stats <file>                       Count folders and bookmarks
  bmtree tree <file> [--json]               Print the folder tree
  bmtree search <file> <query>              Fuzzy search → select → open
  bmtree import <dest> <src> [mode]         Import src into dest
                                            mode: replace | merge | alongside (default)
  bmtree bulk <dest> <folder> [--icons]     Add "url, title" lines from stdin
  bmtree export <src> [path]                Write src as Netscape HTML
  bmtree help                               Show this help

Sources can be Netscape HTML files or Firefox places.sqlite databases.
Merge imports into the first root of dest.
Folders are addressed by the position key tree prints, e.g. 0/2 for the
third child of the first root. A new dest starts with a single root, 0.

Search Keybindings:
  j/k         Move down/up
  Enter       Open bookmark in browser
  y           Copy URL to clipboard
  q/Esc       Cancel

Configuration:
  ~/.config/bmtree/config.json
`
	fmt.Print(help)
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() *app {
	configPath, err := config.DefaultConfigFilePath()
	if err != nil {
		fatal("getting config path", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fatal("loading config", err)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		fatal("reading config", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return &app{cfg: cfg, logger: logger}
}

// printToasts shows store messages on the terminal.
var printToasts = store.NotifierFunc(func(t store.Toast) {
	switch t.Kind {
	case store.ToastError:
		fmt.Fprintln(os.Stderr, "✗ "+t.Message)
	case store.ToastSuccess:
		fmt.Println("✓ " + t.Message)
	default:
		fmt.Println(t.Message)
	}
})

func (a *app) newStore(icons store.IconService) *store.Store {
	return store.New(store.Params{
		Icons:            icons,
		Notifier:         printToasts,
		Logger:           a.logger,
		DefaultRootTitle: a.cfg.DefaultRootTitle,
	})
}

func (a *app) newIconPool() *favicon.Pool {
	fetcher := favicon.NewHTTPFetcher(favicon.HTTPFetcherParams{
		Timeout: a.cfg.IconTimeout(),
		Sources: a.cfg.IconSources,
		Logger:  a.logger,
	})
	return favicon.NewPool(favicon.PoolParams{
		Fetcher:     fetcher,
		Concurrency: a.cfg.IconConcurrency,
		Logger:      a.logger,
	})
}

// loadRoots reads path into roots. Top-level bookmarks are wrapped the
// same way an import into an empty forest wraps them.
func loadRoots(path string) []*model.Folder {
	nodes, err := importer.ReadFile(path)
	if err != nil {
		fatal("loading bookmarks", err)
	}
	st := store.New(store.Params{})
	st.Import(nodes, store.ImportReplace)
	return st.Roots()
}

func writeHTML(path string, roots []*model.Folder) {
	if err := os.WriteFile(path, []byte(exporter.ExportHTML(roots)), 0644); err != nil {
		fatal("writing file", err)
	}
}

func runStats(path string) {
	s := model.CountStats(loadRoots(path))
	fmt.Printf("%d folders, %d bookmarks\n", s.Folders, s.Bookmarks)
}

func runTree(path string, asJSON bool) {
	roots := loadRoots(path)

	if asJSON {
		data, err := json.MarshalIndent(roots, "", "  ")
		if err != nil {
			fatal("encoding tree", err)
		}
		fmt.Println(string(data))
		return
	}

	for i, root := range roots {
		printFolder(os.Stdout, root, strconv.Itoa(i), 0)
	}
}

// printFolder writes f and everything below it. key is f's position key
// as accepted by model.FolderAtPath.
func printFolder(w io.Writer, f *model.Folder, key string, depth int) {
	indent := strings.Repeat("  ", depth)
	marker := ""
	if f.PersonalToolbarFolder {
		marker = " (toolbar)"
	}
	fmt.Fprintf(w, "%s%s/%s  [%s]\n", indent, f.Title, marker, key)
	for i, child := range f.Children {
		switch child.Kind {
		case model.KindFolder:
			printFolder(w, child.Folder, key+"/"+strconv.Itoa(i), depth+1)
		case model.KindBookmark:
			fmt.Fprintf(w, "%s  %s  <%s>\n", indent, child.Bookmark.Title, child.Bookmark.Href)
		}
	}
}

// runSearch performs a fuzzy search and opens or copies the selected
// bookmark.
func runSearch(path, query string) {
	results := search.FuzzyBookmarks(loadRoots(path), query)

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		os.Exit(0)
	}

	var selected *model.Bookmark
	action := picker.ActionOpen

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Node.Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		// Multiple results - show picker
		program := tea.NewProgram(picker.New(results, query))
		finalModel, err := program.Run()
		if err != nil {
			fatal("running picker", err)
		}
		selected, action = finalModel.(picker.Picker).Selected()
	}

	if selected == nil {
		os.Exit(0)
	}

	switch action {
	case picker.ActionCopy:
		if err := clipboard.WriteAll(selected.Href); err != nil {
			fatal("copying URL", err)
		}
		fmt.Printf("Copied: %s\n", selected.Href)
	case picker.ActionOpen:
		openURL(selected.Href)
	}
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// loadDest loads an existing destination file, or starts a fresh forest
// when it does not exist yet.
func loadDest(st *store.Store, path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		st.Init()
		return
	}
	st.Load(loadRoots(path))
	st.Init()
}

// runImport handles the import subcommand.
func runImport(destPath, srcPath, modeName string) {
	mode, err := store.ParseImportMode(modeName)
	if err != nil {
		fatal("parsing mode", err)
	}
	a := newApp()

	nodes, err := importer.ReadFile(srcPath)
	if err != nil {
		fatal("reading import", err)
	}

	st := a.newStore(nil)
	loadDest(st, destPath)
	st.Import(nodes, mode)

	writeHTML(destPath, st.Snapshot())
}

// addBulk adds the lines of text to the folder at key.
func addBulk(st *store.Store, key, text string, icons bool) (added, skipped int, err error) {
	folder := model.FolderAtPath(st.Snapshot(), key)
	if folder == nil {
		return 0, 0, fmt.Errorf("no folder at %q", key)
	}
	added, skipped = st.BulkAdd(folder.ID, text, icons)
	return added, skipped, nil
}

// runBulk adds bookmarks read from stdin to a folder of dest.
func runBulk(destPath, key string, icons bool) {
	a := newApp()
	icons = icons || a.cfg.FetchIcons

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("reading stdin", err)
	}

	var pool *favicon.Pool
	var st *store.Store
	if icons {
		pool = a.newIconPool()
		st = a.newStore(pool)
	} else {
		st = a.newStore(nil)
	}
	loadDest(st, destPath)

	added, skipped, err := addBulk(st, key, string(text), icons)
	if err != nil {
		fatal("adding bookmarks", err)
	}
	if pool != nil && st.IconPending() > 0 {
		fmt.Printf("Fetching %d icons...\n", st.IconPending())
		pool.Wait()
	}

	writeHTML(destPath, st.Snapshot())
	a.logger.Debug("bulk add finished", "added", added, "skipped", skipped)
}

// runExport handles the export subcommand.
func runExport(srcPath, outputPath string) {
	// Determine output path
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal("getting default export path", err)
		}
	}

	roots := loadRoots(srcPath)
	writeHTML(outputPath, roots)

	s := model.CountStats(roots)
	fmt.Printf("Exported %d bookmarks, %d folders to %s\n", s.Bookmarks, s.Folders, outputPath)
}
