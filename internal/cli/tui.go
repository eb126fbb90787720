package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PersonListModel - Interactive focal person selection
// =============================================================================

// PersonListModel is the bubbletea model for interactive focal person
// selection. People are listed by display name with their lifespan; typing
// filters the list.
type PersonListModel struct {
	People   []kin.Person
	Filtered []kin.Person
	Filter   string
	Cursor   int
	Selected *kin.Person
	Height   int
	Offset   int
}

// NewPersonListModel creates a new person list model sorted by name.
func NewPersonListModel(people []kin.Person) PersonListModel {
	sorted := slices.Clone(people)
	slices.SortFunc(sorted, func(a, b kin.Person) int {
		return strings.Compare(a.DisplayName(), b.DisplayName())
	})
	return PersonListModel{
		People:   sorted,
		Filtered: sorted,
		Height:   15,
	}
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down":
			if m.Cursor < len(m.Filtered)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if m.Cursor < len(m.Filtered) {
				p := m.Filtered[m.Cursor]
				m.Selected = &p
			}
			return m, tea.Quit
		case "backspace":
			if len(m.Filter) > 0 {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.applyFilter()
			}
		default:
			if len(msg.String()) == 1 {
				m.Filter += msg.String()
				m.applyFilter()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// applyFilter rebuilds the filtered list and clamps the cursor.
func (m *PersonListModel) applyFilter() {
	if m.Filter == "" {
		m.Filtered = m.People
	} else {
		needle := strings.ToLower(m.Filter)
		m.Filtered = nil
		for _, p := range m.People {
			if strings.Contains(strings.ToLower(p.DisplayName()), needle) ||
				strings.Contains(strings.ToLower(p.ID), needle) {
				m.Filtered = append(m.Filtered, p)
			}
		}
	}
	m.Cursor = 0
	m.Offset = 0
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Focal Person"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc quit  type to filter"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	end := m.Offset + m.Height
	if end > len(m.Filtered) {
		end = len(m.Filtered)
	}

	for i := m.Offset; i < end; i++ {
		p := m.Filtered[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := p.DisplayName()
		if life := p.Lifespan(); life != "" {
			line += " " + listDimStyle.Render(life)
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	if len(m.Filtered) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d of %d people", len(m.Filtered), len(m.People))))
	return b.String()
}

// pickFocalPerson runs the interactive picker and returns the selected
// person's ID, or "" when the user quit without selecting.
func pickFocalPerson(snap kin.Snapshot) (string, error) {
	if len(snap.People) == 0 {
		return "", nil
	}

	final, err := tea.NewProgram(NewPersonListModel(snap.People)).Run()
	if err != nil {
		return "", fmt.Errorf("focal picker: %w", err)
	}

	m, ok := final.(PersonListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.ID, nil
}
