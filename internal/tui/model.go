// Package tui is a terminal section editor for a planning document. It
// drives an editor.Controller: sections expand and collapse independently
// and Learning Situation sections can be edited as structured records.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aulaplan/internal/editor"
	"aulaplan/internal/sda"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SaveFunc stores an assembled document and returns the new revision
// number, or zero when nothing changed. It runs off the update loop and only
// ever sees a snapshot of the markdown.
type SaveFunc func(markdown string) (int, error)

// previewLines caps the raw body shown under an expanded section.
const previewLines = 12

// Model is the root bubbletea model of the section editor.
type Model struct {
	ctrl  *editor.Controller
	title string
	save  SaveFunc

	cursor   int
	activity int

	saving      bool
	confirmQuit bool
	status      string
	err         string

	width  int
	height int
}

func New(title string, ctrl *editor.Controller, save SaveFunc) Model {
	return Model{ctrl: ctrl, title: title, save: save}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func saveCmd(save SaveFunc, markdown string) tea.Cmd {
	return func() tea.Msg {
		seq, err := save(markdown)
		return SavedMsg{Markdown: markdown, Seq: seq, Err: err}
	}
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SavedMsg:
		m.saving = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		if m.ctrl.Preview() == msg.Markdown {
			m.ctrl.Assemble()
		}
		if msg.Seq == 0 {
			m.status = "Sin cambios"
		} else {
			m.status = fmt.Sprintf("Guardado (revisión %d)", msg.Seq)
		}
		return m, clearStatusCmd()

	case ClearStatusMsg:
		m.status = ""
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != KeyQuit {
		m.confirmQuit = false
	}

	if m.saving && editKeys[key] {
		m.status = "Guardando... espera a que termine"
		return m, nil
	}

	switch key {
	case KeyQuit, KeyCtrlC:
		if key == KeyQuit && m.ctrl.Dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.status = "Hay cambios sin guardar: pulsa q otra vez para salir"
			return m, nil
		}
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.cursor > 0 {
			m.cursor--
			m.activity = 0
		}
		return m, nil

	case KeyDown, KeyJ:
		if m.cursor < len(m.ctrl.Editors())-1 {
			m.cursor++
			m.activity = 0
		}
		return m, nil

	case KeyEnter:
		if ed := m.current(); ed != nil {
			ed.Toggle()
			m.activity = 0
		}
		return m, nil

	case KeyMode:
		if ed := m.current(); ed != nil {
			m.apply(ed.ToggleMode())
			m.activity = 0
		}
		return m, nil

	case KeyNextRow, KeyPrevRow:
		n := m.activityCount()
		if n == 0 {
			return m, nil
		}
		if key == KeyNextRow {
			m.activity = (m.activity + 1) % n
		} else {
			m.activity = (m.activity + n - 1) % n
		}
		return m, nil

	case KeyAddRow:
		if ed := m.current(); ed != nil {
			if m.apply(ed.AddActivity()) {
				m.activity = m.activityCount() - 1
			}
		}
		return m, nil

	case KeyRemoveRow:
		if ed := m.current(); ed != nil {
			if m.apply(ed.RemoveActivity(m.activity)) && m.activity >= m.activityCount() {
				m.activity = max(m.activityCount()-1, 0)
			}
		}
		return m, nil

	case KeySave:
		if m.saving || m.save == nil {
			return m, nil
		}
		m.saving = true
		m.status = "Guardando..."
		return m, saveCmd(m.save, m.ctrl.Preview())
	}
	return m, nil
}

// apply records err for display and reports whether the action succeeded.
func (m *Model) apply(err error) bool {
	if err == nil {
		m.err = ""
		return true
	}
	switch {
	case errors.Is(err, editor.ErrNotExpanded):
		m.err = "Abre la sección con Enter primero"
	case errors.Is(err, editor.ErrNotLearningSituation):
		m.err = "Solo las situaciones de aprendizaje tienen vista estructurada"
	case errors.Is(err, editor.ErrNotStructured):
		m.err = "Cambia a la vista estructurada con m"
	default:
		m.err = err.Error()
	}
	return false
}

func (m Model) current() *editor.SectionEditor {
	eds := m.ctrl.Editors()
	if m.cursor < 0 || m.cursor >= len(eds) {
		return nil
	}
	return eds[m.cursor]
}

func (m Model) activityCount() int {
	ed := m.current()
	if ed == nil || ed.State() != editor.StateExpandedStructured {
		return 0
	}
	rec, err := ed.Record()
	if err != nil {
		return 0
	}
	return len(rec.Activities)
}

func (m Model) View() string {
	var parts []string
	parts = append(parts, m.renderHeader())
	parts = append(parts, DividerStyle.Render(strings.Repeat("─", m.dividerWidth())))
	parts = append(parts, m.renderSections())
	parts = append(parts, DividerStyle.Render(strings.Repeat("─", m.dividerWidth())))
	if m.err != "" {
		parts = append(parts, ErrorStyle.Render("Error: ")+ErrorTextStyle.Render(m.err))
	}
	if m.status != "" {
		parts = append(parts, StatusStyle.Render(m.status))
	}
	parts = append(parts, m.renderFooter())
	return strings.Join(parts, "\n")
}

func (m Model) dividerWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 60
}

func (m Model) renderHeader() string {
	header := TitleStyle.Render(m.title)
	if m.ctrl.Dirty() {
		header += DirtyStyle.Render(" ●")
	}
	return header + DimStyle.Render(fmt.Sprintf("  %d secciones · %s", len(m.ctrl.Editors()), m.ctrl.Language()))
}

func (m Model) renderSections() string {
	var lines []string
	for i, ed := range m.ctrl.Editors() {
		sec := ed.Section()
		marker := "  "
		if i == m.cursor {
			marker = SelectedStyle.Render("> ")
		}
		arrow := "▸ "
		if ed.Expanded() {
			arrow = "▾ "
		}
		indent := strings.Repeat("  ", max(sec.Level-1, 0))
		line := marker + indent + arrow + levelStyle(sec.Level).Render(sec.Title)
		if ed.IsLearningSituation() {
			line += BadgeStyle.Render(" [SdA]")
		}
		if ed.Expanded() {
			line += ModeStyle.Render(" (" + ed.Mode().String() + ")")
		}
		lines = append(lines, line)

		if !ed.Expanded() {
			continue
		}
		body := indent + "    "
		if ed.Mode() == editor.ModeStructured {
			lines = append(lines, m.renderRecord(ed, body, i == m.cursor)...)
		} else {
			lines = append(lines, renderRaw(sec.Content, body)...)
		}
	}
	return strings.Join(lines, "\n")
}

func renderRaw(content, indent string) []string {
	if strings.TrimSpace(content) == "" {
		return []string{indent + DimStyle.Render("(vacía)")}
	}
	raw := strings.Split(content, "\n")
	var out []string
	for i, l := range raw {
		if i == previewLines {
			out = append(out, indent+DimStyle.Render(fmt.Sprintf("… %d líneas más", len(raw)-previewLines)))
			break
		}
		out = append(out, indent+DimStyle.Render(l))
	}
	return out
}

// fieldLabels names the scalar fields of a record in the structured view.
var fieldLabels = map[sda.Field]string{
	sda.FieldContextPersonal:     "Contexto personal",
	sda.FieldContextEducational:  "Contexto educativo",
	sda.FieldContextSocial:       "Contexto social",
	sda.FieldContextProfessional: "Contexto profesional",
	sda.FieldJustification:       sda.LabelJustification,
	sda.FieldODSRelation:         sda.LabelODS,
	sda.FieldCompetencies:        sda.LabelCompetencies,
	sda.FieldKnowledge:           sda.LabelKnowledge,
	sda.FieldInstruments:         sda.LabelInstruments,
}

func (m Model) renderRecord(ed *editor.SectionEditor, indent string, focused bool) []string {
	rec, err := ed.Record()
	if err != nil {
		return []string{indent + ErrorTextStyle.Render(err.Error())}
	}
	var out []string
	for _, f := range sda.Fields {
		// The activity table sits between the knowledge and instruments blocks.
		if f == sda.FieldInstruments {
			out = append(out, m.renderActivities(rec.Activities, indent, focused)...)
		}
		value, err := rec.Get(f)
		if err != nil {
			continue
		}
		if strings.TrimSpace(value) == "" {
			value = DimStyle.Render("—")
		}
		label := strings.TrimSuffix(fieldLabels[f], ":")
		out = append(out, indent+LabelStyle.Render(label+": ")+oneLine(value))
	}
	return out
}

func (m Model) renderActivities(activities []sda.Activity, indent string, focused bool) []string {
	out := []string{indent + LabelStyle.Render(sda.LabelOrganization)}
	for j, a := range activities {
		row := fmt.Sprintf("%d. %s · %s · %s", j+1, a.Title, a.Spaces, a.Time)
		if focused && j == m.activity {
			out = append(out, indent+SelectedStyle.Render("* "+oneLine(row)))
		} else {
			out = append(out, indent+"  "+oneLine(row))
		}
	}
	return out
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if lipgloss.Width(s) > 80 {
		r := []rune(s)
		if len(r) > 79 {
			return string(r[:79]) + "…"
		}
	}
	return s
}

func (m Model) renderFooter() string {
	parts := []string{
		FooterKeyStyle.Render("j/k") + FooterDescStyle.Render(" Mover"),
		FooterKeyStyle.Render("Enter") + FooterDescStyle.Render(" Abrir/cerrar"),
	}
	if ed := m.current(); ed != nil && ed.IsLearningSituation() && ed.Expanded() {
		parts = append(parts, FooterKeyStyle.Render("m")+FooterDescStyle.Render(" Vista"))
		if ed.Mode() == editor.ModeStructured {
			parts = append(parts,
				FooterKeyStyle.Render("Tab")+FooterDescStyle.Render(" Actividad"),
				FooterKeyStyle.Render("a")+FooterDescStyle.Render(" Añadir"),
				FooterKeyStyle.Render("x")+FooterDescStyle.Render(" Quitar"),
			)
		}
	}
	parts = append(parts,
		FooterKeyStyle.Render("s")+FooterDescStyle.Render(" Guardar"),
		FooterKeyStyle.Render("q")+FooterDescStyle.Render(" Salir"),
	)
	return strings.Join(parts, "  ")
}
