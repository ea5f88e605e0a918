package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/syslex/artitracker/pkg/report"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// filterOrder is the cycle of the tab key; the empty inclusion shows all.
var filterOrder = []report.Inclusion{
	"",
	report.InclusionParent,
	report.InclusionDependency,
	report.InclusionPlugin,
}

// =============================================================================
// ReferenceListModel - Interactive reference browser
// =============================================================================

// ReferenceListModel is the bubbletea model for browsing the references of
// a report.
type ReferenceListModel struct {
	Report  *report.Report
	Visible []report.Reference
	Filter  report.Inclusion
	Cursor  int
	Height  int
	Offset  int
}

// NewReferenceListModel creates a browser over the references of r.
func NewReferenceListModel(r *report.Report) ReferenceListModel {
	m := ReferenceListModel{Report: r, Height: 15}
	m.applyFilter()
	return m
}

func (m *ReferenceListModel) applyFilter() {
	m.Visible = nil
	for _, ref := range m.Report.Dependencies {
		if m.Filter == "" || ref.Inclusion == m.Filter {
			m.Visible = append(m.Visible, ref)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m ReferenceListModel) Init() tea.Cmd {
	return nil
}

func (m ReferenceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.Filter = nextFilter(m.Filter)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func nextFilter(cur report.Inclusion) report.Inclusion {
	for i, f := range filterOrder {
		if f == cur {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return ""
}

func filterLabel(f report.Inclusion) string {
	if f == "" {
		return "all"
	}
	return strings.ToLower(string(f))
}

func (m ReferenceListModel) View() string {
	var b strings.Builder

	title := "Artifact"
	if m.Report.Artifact != nil {
		title = m.Report.Artifact.String()
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(javaLabel(m.Report) + " · " + countLine(m.Report)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ filter (" + filterLabel(m.Filter) + ")  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no references"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		ref := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, orDash(ref.Group), orDash(ref.Name), orDash(ref.Version), string(ref.Inclusion)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Name", "Version", "Inclusion").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = inclusionStyles[m.Visible[idx].Inclusion]
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}
