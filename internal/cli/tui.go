package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
)

// Inspector styles
var (
	cellStyle       = lipgloss.NewStyle().Width(9).Align(lipgloss.Right)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	inspectDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	inspectTabStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Underline(true)
)

// inspectModes are the modes the inspector cycles through with "m".
var inspectModes = []selection.Mode{
	selection.Item,
	selection.ItemAndRow,
	selection.ItemAndColumn,
	selection.ItemRowAndColumn,
	selection.ItemRowSlice,
	selection.ItemColumnSlice,
	selection.ItemRowAndColumn | selection.MultiSeries,
	selection.None,
}

// =============================================================================
// InspectModel - Interactive scene inspector
// =============================================================================

// InspectModel is the bubbletea model of the scene inspector. It plays the
// role of the picking collaborator: key presses turn into picks on the
// graph, and every change is followed by one sync.
type InspectModel struct {
	ctx    context.Context
	graph  *bars.Graph
	Frame  bars.Frame
	Series int             // index into graph.AllSeries()
	Cursor series.Position // absolute coordinate
	Status string
}

// NewInspectModel creates an inspector over g and runs the first sync.
func NewInspectModel(ctx context.Context, g *bars.Graph) InspectModel {
	m := InspectModel{ctx: ctx, graph: g}
	m.Frame = g.Sync(ctx)
	m.Cursor = series.Position{Row: m.Frame.Window.RowMin, Col: m.Frame.Window.ColMin}
	if st := g.Selection(); st.Valid() {
		m.Cursor = st.Coord
		m.Series = indexOfSeries(g.AllSeries(), st.Series)
	}
	return m
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	w := m.Frame.Window
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor.Row > w.RowMin {
			m.Cursor.Row--
		}
		return m, nil
	case "down", "j":
		if m.Cursor.Row < w.RowMax {
			m.Cursor.Row++
		}
		return m, nil
	case "left", "h":
		if m.Cursor.Col > w.ColMin {
			m.Cursor.Col--
		}
		return m, nil
	case "right", "l":
		if m.Cursor.Col < w.ColMax {
			m.Cursor.Col++
		}
		return m, nil
	case "tab":
		if n := len(m.graph.AllSeries()); n > 0 {
			m.Series = (m.Series + 1) % n
		}
		return m, nil
	case "enter", " ":
		m.pick()
	case "esc", "x":
		m.graph.PickBackground()
		m.Status = "selection cleared"
	case "r":
		m.pickLabel(selection.KindRow, m.Cursor.Row-w.RowMin)
	case "c":
		m.pickLabel(selection.KindColumn, m.Cursor.Col-w.ColMin)
	case "s":
		m.graph.SetSlicingActive(!m.graph.SlicingActive())
		m.Status = "slicing " + onOff(m.graph.SlicingActive())
	case "m":
		m.nextMode()
	case "v":
		if s := m.current(); s != nil {
			if err := m.graph.SetSeriesVisible(s, !s.Visible); err != nil {
				m.Status = err.Error()
			} else if s.Visible {
				m.Status = s.Name + " shown"
			} else {
				m.Status = s.Name + " hidden"
			}
		}
	default:
		return m, nil
	}

	m.Frame = m.graph.Sync(m.ctx)
	return m, nil
}

// current returns the series under the cursor.
func (m InspectModel) current() *series.Series {
	all := m.graph.AllSeries()
	if m.Series < 0 || m.Series >= len(all) {
		return nil
	}
	return all[m.Series]
}

// pick resolves the cursor to an instance index in the last frame and
// reports it as a hit, the way a pointer picker would.
func (m *InspectModel) pick() {
	s := m.current()
	if s == nil {
		return
	}
	sf, _ := m.Frame.SeriesFrame(s.Name)
	index := layout.IndexOf(sf.Bars, m.Cursor)
	if m.graph.Pick(s.Name, index) {
		m.Status = fmt.Sprintf("picked %s %s", s.Name, m.Cursor)
	} else {
		m.Status = fmt.Sprintf("no pickable bar at %s %s", s.Name, m.Cursor)
	}
}

func (m *InspectModel) pickLabel(kind selection.Kind, index int) {
	if m.graph.PickAxisLabel(kind, index) {
		m.Status = fmt.Sprintf("picked %s label %d", kind, index)
	} else {
		m.Status = fmt.Sprintf("%s labels need %s in the selection mode", kind, kind)
	}
}

func (m *InspectModel) nextMode() {
	cur := m.graph.SelectionMode()
	next := inspectModes[0]
	for i, mode := range inspectModes {
		if mode == cur {
			next = inspectModes[(i+1)%len(inspectModes)]
			break
		}
	}
	if err := m.graph.SetSelectionMode(next); err != nil {
		m.Status = err.Error()
		return
	}
	m.Status = "mode " + next.String()
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scene Inspector"))
	b.WriteString("  ")
	b.WriteString(inspectDimStyle.Render(fmt.Sprintf("mode %s · sync #%d", m.Frame.Selection.Mode, m.Frame.Seq)))
	b.WriteString("\n")
	b.WriteString(inspectDimStyle.Render("←↑↓→ move  ⏎ pick  r/c label  s slice  m mode  v visible  tab series  x clear  q quit"))
	b.WriteString("\n\n")

	for i, s := range m.graph.AllSeries() {
		name := s.Name
		if !s.Visible {
			name += " (hidden)"
		}
		if i == m.Series {
			b.WriteString(inspectTabStyle.Render(name))
		} else {
			b.WriteString(inspectDimStyle.Render(name))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	if s := m.current(); s != nil {
		b.WriteString(m.grid(s))
	}

	b.WriteString("\n")
	if sel := m.Frame.Selection; sel.Valid() {
		b.WriteString(fmt.Sprintf("selected %s %s", sel.Series, sel.Coord))
	} else {
		b.WriteString(inspectDimStyle.Render("nothing selected"))
	}
	if sl := m.Frame.Slice; sl != nil {
		b.WriteString(fmt.Sprintf("  ·  %s slice %d: %d bars", sl.Orientation, sl.Index, len(sl.Bars)))
	}
	b.WriteString("\n")
	if m.Status != "" {
		b.WriteString(inspectDimStyle.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

// grid renders the window of s with row and column labels, coloring cells
// by highlight kind.
func (m InspectModel) grid(s *series.Series) string {
	w := m.Frame.Window
	sf, _ := m.Frame.SeriesFrame(s.Name)
	var b strings.Builder

	b.WriteString(cellStyle.Render(""))
	for col := w.ColMin; col <= w.ColMax; col++ {
		b.WriteString(styleHeader.Inherit(cellStyle).Render(label(m.Frame.ColumnLabels, col-w.ColMin, col)))
	}
	b.WriteString("\n")

	for row := w.RowMin; row <= w.RowMax; row++ {
		b.WriteString(styleHeader.Inherit(cellStyle).Render(label(m.Frame.RowLabels, row-w.RowMin, row)))
		for col := w.ColMin; col <= w.ColMax; col++ {
			p := series.Position{Row: row, Col: col}
			text := "·"
			style := inspectDimStyle
			if it, ok := s.Data().ItemAt(row, col); ok {
				text = strconv.FormatFloat(it.Value, 'g', 5, 64)
				style = StyleValue
			}
			if i := layout.IndexOf(sf.Bars, p); i >= 0 {
				style = highlightStyle(sf.Bars[i].Highlight)
			}
			style = style.Inherit(cellStyle)
			if p == m.Cursor {
				style = style.Inherit(cursorStyle)
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func label(labels []string, i, fallback int) string {
	if i >= 0 && i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return strconv.Itoa(fallback)
}

func indexOfSeries(all []*series.Series, s *series.Series) int {
	for i, x := range all {
		if x == s {
			return i
		}
	}
	return 0
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
