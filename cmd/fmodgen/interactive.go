package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/huandu/xstrings"
	"go.uber.org/multierr"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/linker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize is the number of declarations shown at once.
const pageSize = 20

type entry struct {
	name string
	kind decl.Kind
	file string
	line int
	refs []linker.Reference
}

type browserState int

const (
	stateBrowse browserState = iota
	stateDetail
)

type browser struct {
	entries  []entry
	visible  []int
	errs     []error
	filter   textinput.Model
	selected int
	state    browserState
}

func newBrowser(model *linker.Model, err error) *browser {
	b := &browser{errs: multierr.Errors(err)}
	_ = model.Walk(func(f *decl.File, d decl.Declaration) error {
		b.entries = append(b.entries, entry{
			name: d.DeclName(),
			kind: d.Kind(),
			file: f.Path,
			line: d.Source().Pos.Line,
			refs: model.References(d.DeclName()),
		})
		return nil
	})

	b.filter = textinput.New()
	b.filter.Placeholder = "filter by name or kind"
	b.filter.Prompt = "/ "
	b.filter.Width = 40
	b.filter.Focus()
	b.applyFilter()
	return b
}

// applyFilter keeps entries whose name or kind contains the filter text,
// ignoring case and the underscores of C names.
func (b *browser) applyFilter() {
	query := fold(b.filter.Value())
	b.visible = b.visible[:0]
	for i, e := range b.entries {
		if query == "" || strings.Contains(fold(e.name), query) || strings.Contains(fold(string(e.kind)), query) {
			b.visible = append(b.visible, i)
		}
	}
	if b.selected >= len(b.visible) {
		b.selected = max(len(b.visible)-1, 0)
	}
}

func fold(s string) string {
	return strings.ToLower(xstrings.Delete(s, "_"))
}

func (b *browser) Init() tea.Cmd {
	return textinput.Blink
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			return b, tea.Quit

		case "up":
			if b.state == stateBrowse && b.selected > 0 {
				b.selected--
			}
			return b, nil

		case "down":
			if b.state == stateBrowse && b.selected < len(b.visible)-1 {
				b.selected++
			}
			return b, nil

		case "enter":
			if b.state == stateBrowse && len(b.visible) > 0 {
				b.state = stateDetail
			}
			return b, nil

		case "esc":
			if b.state == stateDetail {
				b.state = stateBrowse
				return b, nil
			}
			return b, tea.Quit
		}
	}

	if b.state != stateBrowse {
		return b, nil
	}
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	b.applyFilter()
	return b, cmd
}

func (b *browser) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("fmodgen"))
	fmt.Fprintf(&s, " %d declarations", len(b.entries))
	if len(b.errs) > 0 {
		s.WriteString(" ")
		s.WriteString(errorStyle.Render(fmt.Sprintf("%d errors", len(b.errs))))
	}
	s.WriteString("\n\n")

	switch b.state {
	case stateBrowse:
		s.WriteString(b.filter.View())
		s.WriteString("\n\n")
		start := max(b.selected-pageSize/2, 0)
		end := min(start+pageSize, len(b.visible))
		for i := start; i < end; i++ {
			e := b.entries[b.visible[i]]
			line := fmt.Sprintf("%-13s %s", e.kind, e.name)
			if i == b.selected {
				s.WriteString(selectedStyle.Render("> " + line))
			} else {
				s.WriteString("  " + line)
			}
			s.WriteString("\n")
		}
		for _, err := range b.errs {
			s.WriteString(errorStyle.Render(err.Error()))
			s.WriteString("\n")
		}
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter details • esc quit"))

	case stateDetail:
		e := b.entries[b.visible[b.selected]]
		fmt.Fprintf(&s, "%s %s\n", nameStyle.Render(e.name), kindStyle.Render(string(e.kind)))
		fmt.Fprintf(&s, "declared in %s:%d\n\n", e.file, e.line)
		if len(e.refs) == 0 {
			s.WriteString("not referenced\n")
		} else {
			fmt.Fprintf(&s, "referenced by %d:\n", len(e.refs))
			for _, r := range e.refs {
				fmt.Fprintf(&s, "  %s (%s)\n", strings.Join(r.Path, "."), r.At)
			}
		}
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}

	return s.String()
}

// runInteractive browses the linked declarations. err is the generation
// error, if any, and is listed below the declarations.
func runInteractive(model *linker.Model, err error) error {
	p := tea.NewProgram(newBrowser(model, err), tea.WithAltScreen())
	_, runErr := p.Run()
	return runErr
}
