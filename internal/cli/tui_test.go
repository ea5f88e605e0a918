package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syslex/artitracker/pkg/report"
)

func str(s string) *string { return &s }

func browserReport() *report.Report {
	ref := func(name string, inc report.Inclusion) report.Reference {
		return report.Reference{
			ArtifactIdentity: report.ArtifactIdentity{Group: str("org.example"), Name: str(name), Version: str("1.0")},
			Inclusion:        inc,
		}
	}
	return &report.Report{
		Artifact: &report.ArtifactIdentity{Group: str("com.example"), Name: str("app"), Version: str("2.0")},
		Dependencies: []report.Reference{
			ref("parent", report.InclusionParent),
			ref("core", report.InclusionDependency),
			ref("util", report.InclusionDependency),
			ref("compiler", report.InclusionPlugin),
		},
	}
}

func press(m ReferenceListModel, keys ...string) ReferenceListModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ReferenceListModel)
	}
	return m
}

func TestReferenceListFilter(t *testing.T) {
	tests := []struct {
		tabs       int
		wantFilter report.Inclusion
		wantCount  int
	}{
		{0, "", 4},
		{1, report.InclusionParent, 1},
		{2, report.InclusionDependency, 2},
		{3, report.InclusionPlugin, 1},
		{4, "", 4},
	}
	for _, tt := range tests {
		t.Run(filterLabel(tt.wantFilter), func(t *testing.T) {
			m := NewReferenceListModel(browserReport())
			for i := 0; i < tt.tabs; i++ {
				m = press(m, "tab")
			}
			if m.Filter != tt.wantFilter {
				t.Errorf("Filter = %q, want %q", m.Filter, tt.wantFilter)
			}
			if len(m.Visible) != tt.wantCount {
				t.Errorf("visible = %d, want %d", len(m.Visible), tt.wantCount)
			}
		})
	}
}

func TestReferenceListFilterKeepsPreviousModel(t *testing.T) {
	m := NewReferenceListModel(browserReport())
	filtered := press(m, "tab", "tab")

	if m.Visible[0].Inclusion != report.InclusionParent {
		t.Errorf("filtering mutated the previous model: %+v", m.Visible[0])
	}
	if filtered.Visible[0].Inclusion != report.InclusionDependency {
		t.Errorf("filtered first = %+v", filtered.Visible[0])
	}
}

func TestReferenceListCursor(t *testing.T) {
	m := NewReferenceListModel(browserReport())
	m.Height = 2

	m = press(m, "down", "j", "down", "down")
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d, want 3 (clamped)", m.Cursor)
	}
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}

	m = press(m, "up", "k", "k", "k")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("Cursor, Offset = %d, %d, want 0, 0", m.Cursor, m.Offset)
	}

	m = press(m, "down", "tab")
	if m.Cursor != 0 {
		t.Errorf("filter change should reset the cursor, got %d", m.Cursor)
	}
}

func TestReferenceListQuit(t *testing.T) {
	m := NewReferenceListModel(browserReport())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestReferenceListView(t *testing.T) {
	m := NewReferenceListModel(browserReport())
	view := m.View()
	for _, want := range []string{"com.example:app:2.0", "1 parent · 2 dependencies · 1 plugin", "filter (all)", "compiler", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	empty := NewReferenceListModel(&report.Report{})
	if !strings.Contains(empty.View(), "no references") {
		t.Errorf("empty View() = %q", empty.View())
	}
}
