package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// sampleWalkthrough has the navigation order 1, 2, 3, 4, 5:
//
//	1
//	  2
//	  3
//	    4
//	5
func sampleWalkthrough() *walkthrough.Walkthrough {
	return &walkthrough.Walkthrough{
		Title: "Tour",
		Steps: []walkthrough.Step{
			{ID: 1, Title: "Root", Location: "a.go:1-2"},
			{ID: 2, Title: "Child A", ParentID: walkthrough.IntPtr(1)},
			{ID: 3, Title: "Child B", ParentID: walkthrough.IntPtr(1), BaseLocation: "b.go:3-3"},
			{ID: 4, Title: "Grandchild", ParentID: walkthrough.IntPtr(3), Body: "Deep body"},
			{ID: 5, Title: "Second root", Comments: []walkthrough.Comment{{ID: "c1", Author: "sam", Body: "looks good"}}},
		},
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m mainModel, keys ...tea.KeyMsg) mainModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(mainModel)
	}
	return m
}

func TestNavigationKeys(t *testing.T) {
	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		expected int // step id under the cursor
	}{
		{"start", nil, 1},
		{"next", []tea.KeyMsg{runeKey("j")}, 2},
		{"next arrow", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}}, 3},
		{"next n", []tea.KeyMsg{runeKey("n"), runeKey("n"), runeKey("n")}, 4},
		{"prev stops at start", []tea.KeyMsg{runeKey("k"), {Type: tea.KeyUp}, runeKey("p")}, 1},
		{"next stops at end", []tea.KeyMsg{runeKey("G"), runeKey("j")}, 5},
		{"last then first", []tea.KeyMsg{runeKey("G"), runeKey("g")}, 1},
		{"parent", []tea.KeyMsg{runeKey("G"), runeKey("k"), runeKey("u")}, 3},
		{"parent of root stays", []tea.KeyMsg{runeKey("u")}, 1},
		{"next sibling skips subtree", []tea.KeyMsg{runeKey("]")}, 5},
		{"sibling inside parent", []tea.KeyMsg{runeKey("j"), runeKey("]")}, 3},
		{"prev sibling", []tea.KeyMsg{runeKey("j"), runeKey("]"), runeKey("[")}, 2},
		{"no next sibling", []tea.KeyMsg{runeKey("j"), runeKey("]"), runeKey("]")}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newMainModel(sampleWalkthrough()), tt.keys...)
			got := m.current()
			if got == nil || got.ID != tt.expected {
				t.Errorf("expected step %d, got %+v", tt.expected, got)
			}
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(key.String(), func(t *testing.T) {
			next, cmd := newMainModel(sampleWalkthrough()).Update(key)
			m := next.(mainModel)
			if !m.quitting {
				t.Error("expected quitting")
			}
			if cmd == nil {
				t.Error("expected quit command")
			}
			if m.View() != "" {
				t.Error("expected empty view after quit")
			}
		})
	}
}

func TestViewShowsSelectionAndDetail(t *testing.T) {
	m := newMainModel(sampleWalkthrough())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = press(next.(mainModel), runeKey("G"))

	view := m.View()
	for _, want := range []string{"Tour  (5/5)", "Second root", "[informational]", "sam", "looks good", "1 comment(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderDetail(t *testing.T) {
	step := &walkthrough.Step{ID: 1, Title: "Diff step", Location: "a.go:1-2", BaseLocation: "a.go:3-4", Body: "Explains"}
	out := renderDetail(step, 60)

	for _, want := range []string{"Diff step", "diff", "head: a.go:1-2", "base: a.go:3-4", "Explains"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected detail to contain %q, got %q", want, out)
		}
	}
	if renderDetail(nil, 60) != "" {
		t.Error("expected empty detail for nil step")
	}
}

func TestEmptyWalkthrough(t *testing.T) {
	m := press(newMainModel(&walkthrough.Walkthrough{Title: "Empty"}), runeKey("j"), runeKey("u"), runeKey("G"))
	if m.current() != nil {
		t.Errorf("expected no current step, got %+v", m.current())
	}
	if !strings.Contains(m.View(), "No steps") {
		t.Error("expected empty list message")
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		cursor, total, height, offset int
		start, end                    int
	}{
		{0, 10, 3, 0, 0, 3},
		{5, 10, 3, 0, 3, 6},
		{1, 10, 3, 4, 1, 4},
		{9, 10, 3, 0, 7, 10},
		{0, 2, 5, 0, 0, 2},
	}
	for _, tt := range tests {
		offset := tt.offset
		start, end := scrollWindow(tt.cursor, tt.total, tt.height, &offset)
		if start != tt.start || end != tt.end {
			t.Errorf("scrollWindow(%d, %d, %d): expected [%d,%d), got [%d,%d)", tt.cursor, tt.total, tt.height, tt.start, tt.end, start, end)
		}
	}
}

func TestFormatTree(t *testing.T) {
	got := FormatTree(sampleWalkthrough(), false)
	expected := `Tour
  1. Root [point-in-time] a.go:1-2
    2. Child A [informational]
    3. Child B [base-only] base b.go:3-3
      4. Grandchild [informational]
  5. Second root [informational]
`
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"日本語のタイトル", 9, "日本語..."},
		{"tiny", 3, "tiny"},
	}
	for _, tt := range tests {
		got := truncateString(tt.in, tt.max)
		if got != tt.expected {
			t.Errorf("truncateString(%q, %d): expected %q, got %q", tt.in, tt.max, tt.expected, got)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateString(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
		}
	}
}
