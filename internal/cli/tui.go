package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hctsai/layerforge/pkg/transform"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// entryFilter selects which report entries the browser shows.
type entryFilter int

const (
	filterAll entryFilter = iota
	filterChanged
	filterSkipped
	filterFailed
)

func (f entryFilter) String() string {
	switch f {
	case filterChanged:
		return "changed"
	case filterSkipped:
		return "skipped"
	case filterFailed:
		return "failed"
	default:
		return "all"
	}
}

func (f entryFilter) matches(kind transform.ResultKind) bool {
	switch f {
	case filterChanged:
		return kind == transform.ResultSuccess || kind == transform.ResultNoChange
	case filterSkipped:
		return kind == transform.ResultSkipped || kind == transform.ResultRejected
	case filterFailed:
		return kind == transform.ResultFailed
	default:
		return true
	}
}

// =============================================================================
// ReportModel - Interactive report browsing
// =============================================================================

// ReportModel is the bubbletea model for browsing a run report.
type ReportModel struct {
	Report  *transform.Report
	Filter  entryFilter
	Cursor  int
	Height  int
	Offset  int
	visible []transform.Entry
}

// NewReportModel creates a new report browser model.
func NewReportModel(report *transform.Report) ReportModel {
	m := ReportModel{
		Report: report,
		Height: 20,
	}
	m.refilter()
	return m
}

func (m *ReportModel) refilter() {
	m.visible = m.visible[:0]
	for _, e := range m.Report.Entries() {
		if m.Filter.matches(e.Result.Kind) {
			m.visible = append(m.visible, e)
		}
	}
	if m.Cursor >= len(m.visible) {
		m.Cursor = 0
		m.Offset = 0
	}
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab", "f":
			m.Filter = (m.Filter + 1) % 4
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ReportModel) View() string {
	var b strings.Builder

	stats := m.Report.Stats()
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Transform %s", m.Report.RunID)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf(
		"scale %g  rotation %d  ·  %d changed  %d unchanged  %d skipped  %d failed",
		m.Report.Scale, m.Report.Rotation,
		stats.Success, stats.NoChange, stats.SkipOrReject, stats.Failed)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab filter  q quit  ·  showing: " + m.Filter.String()))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  (no entries match the filter)"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for i := m.Offset; i < end; i++ {
		e := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s %s", cursor, outcomeIcon(e.Result.Kind), e.Key())
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	// Detail pane for the entry under the cursor.
	cur := m.visible[m.Cursor]
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 60)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", outcomeIcon(cur.Result.Kind), StyleValue.Render(cur.Key())))
	if cur.Result.Handler != "" {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  handler: %s\n", cur.Result.Handler)))
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  type: %s\n", cur.NodeType)))
	if cur.Result.Detail != "" {
		b.WriteString("  " + cur.Result.Detail + "\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))

	return b.String()
}

// browseReport runs the interactive report browser.
func browseReport(report *transform.Report) error {
	_, err := tea.NewProgram(NewReportModel(report)).Run()
	return err
}
