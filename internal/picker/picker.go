package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmtree/internal/model"
	"github.com/nikbrunner/bmtree/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Action is what the user chose to do with the selected bookmark.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionCopy
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results []search.Result
	query   string
	cursor  int
	action  Action
	keys    KeyMap
	width   int
	height  int
}

// New creates a new Picker with the given search results.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		cursor:  0,
		keys:    DefaultKeyMap(),
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			p.action = ActionNone
			return p, tea.Quit
		case key.Matches(msg, p.keys.Open):
			p.action = ActionOpen
			return p, tea.Quit
		case key.Matches(msg, p.keys.CopyURL):
			p.action = ActionCopy
			return p, tea.Quit
		case key.Matches(msg, p.keys.Down):
			p.moveDown()
		case key.Matches(msg, p.keys.Up):
			p.moveUp()
		}
	}

	return p, nil
}

func (p *Picker) moveDown() {
	if p.cursor < len(p.results)-1 {
		p.cursor++
	}
}

func (p *Picker) moveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// visibleRange returns the slice of results that fits the terminal,
// keeping the cursor on screen. Each result takes two lines.
func (p Picker) visibleRange() (start, end int) {
	rows := (p.height - 4) / 2
	if rows < 1 {
		rows = 1
	}
	if rows >= len(p.results) {
		return 0, len(p.results)
	}
	start = p.cursor - rows + 1
	if start < 0 {
		start = 0
	}
	return start, start + rows
}

// highlight renders title with the fuzzy-matched characters emphasized.
func highlight(title string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(title)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	// Header
	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	start, end := p.visibleRange()
	for i := start; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := highlight(result.Node.Title(), result.MatchedIndexes, style)
		if len(result.Path) > 0 {
			title += "  " + pathStyle.Render(strings.Join(result.Path, " / "))
		}

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, title))
		if result.Node.Kind == model.KindBookmark {
			b.WriteString(fmt.Sprintf("   %s\n", urlStyle.Render(result.Node.Bookmark.Href)))
		} else {
			b.WriteString("\n")
		}
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(p.keys.footer()))

	return b.String()
}

// Selected returns the chosen bookmark and action. The bookmark is nil
// when the user cancelled or the cursor is on a folder.
func (p Picker) Selected() (*model.Bookmark, Action) {
	if p.action == ActionNone || p.cursor >= len(p.results) {
		return nil, ActionNone
	}
	n := p.results[p.cursor].Node
	if n.Kind != model.KindBookmark {
		return nil, ActionNone
	}
	return n.Bookmark, p.action
}

// Cancelled returns true if the user left without choosing an action.
func (p Picker) Cancelled() bool {
	return p.action == ActionNone
}
