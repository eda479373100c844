// Package store holds the authoritative bookmark forest together with the
// selection and view state around it. Every structural mutation records
// an undo snapshot first.
package store

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nikbrunner/bmtree/internal/favicon"
	"github.com/nikbrunner/bmtree/internal/history"
	"github.com/nikbrunner/bmtree/internal/model"
	"github.com/nikbrunner/bmtree/internal/search"
)

// DefaultRootTitle names the root created by Init and Reset.
const DefaultRootTitle = "Bookmarks"

// IconService fetches favicons asynchronously. *favicon.Pool satisfies it.
type IconService interface {
	Enqueue(bookmarkID, url string, done func(bookmarkID string, r favicon.Result))
	OnQueueChange(fn favicon.QueueChangeFunc)
}

// Params holds parameters for creating a new Store.
type Params struct {
	History          *history.Manager // optional, defaults to history.New()
	Icons            IconService      // optional, nil disables icon fetching
	Notifier         Notifier         // optional
	Logger           *slog.Logger     // optional
	DefaultRootTitle string           // optional, defaults to DefaultRootTitle
}

type iconJob struct {
	bookmarkID string
	url        string
}

// Store is safe for concurrent use. Mutations are serialized; icon
// results arriving from fetch goroutines take the same lock.
type Store struct {
	history   *history.Manager
	icons     IconService
	notifier  Notifier
	logger    *slog.Logger
	rootTitle string

	mu                sync.Mutex
	roots             []*model.Folder
	selectedID        *string
	expanded          map[string]bool
	showTreeBookmarks bool
	searchQuery       string
	revision          uint64

	// Delivered by unlock once mu is released.
	outbox   []Toast
	iconJobs []iconJob

	iconPending atomic.Int64
}

// New creates an empty Store. Call Init or Load to populate it.
func New(params Params) *Store {
	s := &Store{
		history:           params.History,
		icons:             params.Icons,
		notifier:          params.Notifier,
		logger:            params.Logger,
		rootTitle:         params.DefaultRootTitle,
		roots:             []*model.Folder{},
		expanded:          map[string]bool{},
		showTreeBookmarks: true,
	}
	if s.history == nil {
		s.history = history.New()
	}
	if s.notifier == nil {
		s.notifier = discardNotifier{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.rootTitle == "" {
		s.rootTitle = DefaultRootTitle
	}
	if s.icons != nil {
		s.icons.OnQueueChange(func(pending int) {
			s.iconPending.Store(int64(pending))
		})
	}
	return s
}

// unlock releases the store, then delivers toasts and icon requests
// queued while it was held.
func (s *Store) unlock() {
	toasts, jobs := s.outbox, s.iconJobs
	s.outbox, s.iconJobs = nil, nil
	s.mu.Unlock()

	for _, j := range jobs {
		s.icons.Enqueue(j.bookmarkID, j.url, s.applyIcon)
	}
	for _, t := range toasts {
		s.notifier.Notify(t)
	}
}

func (s *Store) toast(message string, kind ToastKind) {
	s.outbox = append(s.outbox, newToast(message, kind))
}

// publish replaces the roots slice header so holders of the previous one
// can tell the forest changed.
func (s *Store) publish() {
	s.roots = append(make([]*model.Folder, 0, len(s.roots)), s.roots...)
	s.revision++
}

func (s *Store) pushHistory() {
	s.history.Push(s.roots, s.selectedID)
}

func (s *Store) selectID(id string) {
	s.selectedID = &id
}

// Roots returns the live forest. Callers must not mutate it, and must not
// read it concurrently with icon updates; use Snapshot for that.
func (s *Store) Roots() []*model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roots
}

// Snapshot returns an independent deep copy of the forest.
func (s *Store) Snapshot() []*model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneFolders(s.roots)
}

// Revision increases on every change to the forest.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// SelectedID returns the selected node ID, if any.
func (s *Store) SelectedID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return "", false
	}
	return *s.selectedID, true
}

// SelectedNode returns the selected node, if it still exists.
func (s *Store) SelectedNode() (model.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return model.Node{}, false
	}
	return model.FindNodeByID(s.roots, *s.selectedID)
}

// Breadcrumb returns the path to the selected node.
func (s *Store) Breadcrumb() []model.Crumb {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return []model.Crumb{}
	}
	return model.Breadcrumb(s.roots, *s.selectedID)
}

// ExpandedIDs returns a copy of the folder expansion map.
func (s *Store) ExpandedIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.expanded))
	for id, open := range s.expanded {
		out[id] = open
	}
	return out
}

// ShowTreeBookmarks reports whether a tree view should list bookmarks
// under folders.
func (s *Store) ShowTreeBookmarks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showTreeBookmarks
}

// Stats counts the forest.
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CountStats(s.roots)
}

// SearchQuery returns the current search query.
func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// SearchResults runs the current query against the forest.
func (s *Store) SearchResults() []search.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return search.SearchTree(s.roots, s.searchQuery)
}

// IconPending returns the number of queued or running icon fetches.
func (s *Store) IconPending() int {
	return int(s.iconPending.Load())
}

// CanUndo reports whether Undo would restore a state.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would restore a state.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// applyIcon stores a fetch result on the bookmark it was requested for.
// The bookmark may have been deleted meanwhile, in which case the result
// is dropped. Icon updates are not undoable.
func (s *Store) applyIcon(bookmarkID string, r favicon.Result) {
	s.mu.Lock()
	defer s.unlock()

	n, ok := model.FindNodeByID(s.roots, bookmarkID)
	if !ok || n.Kind != model.KindBookmark {
		s.logger.Debug("dropping icon for missing bookmark", "bookmark", bookmarkID)
		return
	}
	n.Bookmark.IconData = r.IconData
	n.Bookmark.IconURI = r.IconURI
	s.publish()
}
