package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Main Model - step list on top, detail pane below
// ============================================================================

// mainModel is the Bubble Tea model for stepping through a walkthrough
type mainModel struct {
	width    int
	height   int
	quitting bool

	wt     *walkthrough.Walkthrough
	flat   []*walkthrough.Step
	nav    []walkthrough.NavEntry
	depths []int

	cursor int
	offset int // list scroll offset
	detail viewport.Model
}

// newMainModel creates a model over the walkthrough's navigation order
func newMainModel(wt *walkthrough.Walkthrough) mainModel {
	forest := walkthrough.BuildTree(wt.Steps)
	flat := walkthrough.Flatten(forest)
	nav := walkthrough.BuildNavigationMap(forest, flat)

	m := mainModel{
		wt:     wt,
		flat:   flat,
		nav:    nav,
		depths: walkthrough.Depths(nav),
		detail: viewport.New(80, 10),
	}
	m.refreshDetail()
	return m
}

// Init implements tea.Model
func (m mainModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDetail()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	// Anything else scrolls the detail pane
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// handleKey processes navigation keys. Keys it does not handle fall through
// to the detail viewport.
func (m *mainModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return tea.Quit, true
	case "j", "down", "n":
		m.moveTo(m.cursor + 1)
	case "k", "up", "p":
		m.moveTo(m.cursor - 1)
	case "u":
		m.moveTo(m.currentNav().Parent)
	case "]":
		m.moveTo(m.currentNav().NextSibling)
	case "[":
		m.moveTo(m.currentNav().PrevSibling)
	case "g", "home":
		m.moveTo(0)
	case "G", "end":
		m.moveTo(len(m.flat) - 1)
	default:
		return nil, false
	}
	return nil, true
}

func (m *mainModel) currentNav() walkthrough.NavEntry {
	if m.cursor < len(m.nav) {
		return m.nav[m.cursor]
	}
	return walkthrough.NavEntry{Parent: walkthrough.NoIndex, PrevSibling: walkthrough.NoIndex, NextSibling: walkthrough.NoIndex}
}

// moveTo selects a flat index; out-of-range targets (including NoIndex) are ignored
func (m *mainModel) moveTo(idx int) {
	if idx < 0 || idx >= len(m.flat) || idx == m.cursor {
		return
	}
	m.cursor = idx
	m.refreshDetail()
}

// current returns the selected step, or nil for an empty walkthrough
func (m mainModel) current() *walkthrough.Step {
	if m.cursor < len(m.flat) {
		return m.flat[m.cursor]
	}
	return nil
}

func (m *mainModel) refreshDetail() {
	m.detail.SetContent(renderDetail(m.current(), m.detail.Width))
	m.detail.GotoTop()
}

func (m *mainModel) resizeDetail() {
	width := maxInt(m.width, 40)
	m.detail.Width = width
	m.detail.Height = maxInt(m.height-m.listHeight()-3, 3)
	m.refreshDetail()
}

// listHeight is the number of step rows shown above the detail pane
func (m mainModel) listHeight() int {
	height := maxInt(m.height, 24)
	return clamp(len(m.flat), 1, maxInt(height*2/5, 3))
}

// ============================================================================
// Rendering
// ============================================================================

// View implements tea.Model
func (m mainModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 40)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(m.renderHeader(width))
	b.WriteString(m.renderList(m.listHeight()))
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("j/k next/prev  u parent  [/] siblings  g/G first/last  q quit"))

	return b.String()
}

func (m mainModel) renderHeader(width int) string {
	title := m.wt.Title
	if len(m.flat) > 0 {
		title = fmt.Sprintf("%s  (%d/%d)", title, m.cursor+1, len(m.flat))
	}
	return styles.DetailTitle.Render(truncateString(title, width)) + "\n"
}

// renderList renders the scrollable, indented list of steps
func (m *mainModel) renderList(maxHeight int) string {
	if len(m.flat) == 0 {
		return styles.Dim.Render("No steps") + "\n"
	}

	start, end := scrollWindow(m.cursor, len(m.flat), maxHeight, &m.offset)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		step := m.flat[i]
		marker := "  "
		titleStyle := styles.Title
		if i == m.cursor {
			marker = styles.Cursor.Render("> ")
			titleStyle = styles.WithSelection(titleStyle)
		}
		b.WriteString(marker)
		b.WriteString(strings.Repeat("  ", m.depths[i]))
		b.WriteString(titleStyle.Render(step.Title))
		b.WriteString(" ")
		b.WriteString(styles.TypeStyle(step.Type()).Render("[" + string(step.Type()) + "]"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail renders everything known about a step for the detail pane
func renderDetail(step *walkthrough.Step, width int) string {
	if step == nil {
		return ""
	}

	b := getBuilder()
	defer putBuilder(b)

	b.WriteString(styles.DetailTitle.Render(step.Title))
	b.WriteString(" ")
	b.WriteString(styles.Dim.Render(string(step.Type())))
	b.WriteString("\n")

	if step.Location != "" {
		b.WriteString(styles.Location.Render("head: " + step.Location))
		b.WriteString("\n")
	}
	if step.BaseLocation != "" {
		b.WriteString(styles.Base.Render("base: " + step.BaseLocation))
		b.WriteString("\n")
	}

	if step.Body != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(maxInt(width, 20)).Render(step.Body))
		b.WriteString("\n")
	}

	if len(step.Comments) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Dim.Render(fmt.Sprintf("%d comment(s)", len(step.Comments))))
		b.WriteString("\n")
		for _, c := range step.Comments {
			b.WriteString(styles.Author.Render(c.Author + ": "))
			b.WriteString(c.Body)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return os.Stdin, os.Stdout, func() {}
	}

	var closers []func()

	out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		out = os.Stderr // Last resort fallback
	} else {
		closers = append(closers, func() { out.Close() })
	}

	in, err = os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		in = os.Stdin
	} else {
		closers = append(closers, func() { in.Close() })
	}

	// Tell lipgloss to use the TTY for color detection
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

	return in, out, func() {
		for _, c := range closers {
			c()
		}
	}
}

// Run opens the interactive stepper for a walkthrough
func Run(wt *walkthrough.Walkthrough) error {
	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles() // Refresh after getTTY sets up the renderer

	p := tea.NewProgram(newMainModel(wt), tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	_, err := p.Run()
	return err
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen display cells with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "...")
}
