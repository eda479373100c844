// Package history implements linear undo/redo over whole-tree snapshots.
//
// Every snapshot is a structural deep copy, so later edits to the live
// tree never reach a stored entry and a returned entry never aliases the
// stacks.
package history

import (
	"errors"

	"github.com/nikbrunner/bmtree/internal/model"
)

// MaxDepth is the number of undo entries kept; older ones are dropped.
const MaxDepth = 50

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is a snapshot of the forest and its selection.
type Entry struct {
	Roots      []*model.Folder
	SelectedID *string
}

func snapshot(roots []*model.Folder, selectedID *string) Entry {
	e := Entry{Roots: model.CloneFolders(roots)}
	if e.Roots == nil {
		e.Roots = []*model.Folder{}
	}
	if selectedID != nil {
		id := *selectedID
		e.SelectedID = &id
	}
	return e
}

func (e Entry) clone() Entry {
	return snapshot(e.Roots, e.SelectedID)
}

// Manager holds the undo and redo stacks. It is not safe for concurrent
// use; the owning store serializes access.
type Manager struct {
	undoStack []Entry
	redoStack []Entry
}

// New creates an empty history manager.
func New() *Manager {
	return &Manager{}
}

// Push records the current state before a mutation.
// Clears the redo stack.
func (m *Manager) Push(roots []*model.Folder, selectedID *string) {
	m.undoStack = append(m.undoStack, snapshot(roots, selectedID))
	if excess := len(m.undoStack) - MaxDepth; excess > 0 {
		m.undoStack = append(m.undoStack[:0:0], m.undoStack[excess:]...)
	}
	m.redoStack = nil
}

// Undo pops the last entry, saving the current state for redo, and
// returns the state to restore.
func (m *Manager) Undo(currentRoots []*model.Folder, currentSelectedID *string) (Entry, error) {
	if len(m.undoStack) == 0 {
		return Entry{}, ErrNothingToUndo
	}

	entry := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.redoStack = append(m.redoStack, snapshot(currentRoots, currentSelectedID))
	return entry.clone(), nil
}

// Redo pops the last undone entry, saving the current state for undo,
// and returns the state to restore.
func (m *Manager) Redo(currentRoots []*model.Folder, currentSelectedID *string) (Entry, error) {
	if len(m.redoStack) == 0 {
		return Entry{}, ErrNothingToRedo
	}

	entry := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.undoStack = append(m.undoStack, snapshot(currentRoots, currentSelectedID))
	return entry.clone(), nil
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undoStack = nil
	m.redoStack = nil
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	return len(m.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	return len(m.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (m *Manager) UndoCount() int {
	return len(m.undoStack)
}

// RedoCount returns the number of redo operations available.
func (m *Manager) RedoCount() int {
	return len(m.redoStack)
}
