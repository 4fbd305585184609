package ui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tracescope/internal/nav"
	"tracescope/internal/notify"
	"tracescope/internal/render"
	"tracescope/internal/session"
)

type inputMode uint8

const (
	modeBrowse inputMode = iota
	modeGoto
	modeEdit
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	editStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	codeStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("1")).
			Padding(0, 1)
)

// Options configures the viewer.
type Options struct {
	Keys   *KeyMap // must be the controller's surface
	Banner *Banner // must be the controller's alerter, or nil
	Width  int
	Height int
}

// Viewer is the Bubble Tea model of the interactive trace viewer.
type Viewer struct {
	ctrl   *nav.Controller
	keys   *KeyMap
	banner *Banner

	help  help.Model
	tree  viewport.Model
	prog  progress.Model
	input textinput.Model

	mode   inputMode
	cursor int
	edits  *session.Edits
	status string
	failed bool

	width  int
	height int
}

// NewViewer returns a viewer over a loaded controller.
func NewViewer(ctrl *nav.Controller, opts Options) *Viewer {
	if opts.Keys == nil {
		opts.Keys = NewKeyMap()
	}
	if opts.Banner == nil {
		opts.Banner = NewBanner()
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	in := textinput.New()
	in.CharLimit = 64

	v := &Viewer{
		ctrl:   ctrl,
		keys:   opts.Keys,
		banner: opts.Banner,
		help:   help.New(),
		tree:   viewport.New(opts.Width, 1),
		prog:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:  in,
		edits:  session.NewEdits(),
	}
	v.resize(opts.Width, opts.Height)
	return v
}

// Init implements tea.Model.
func (v *Viewer) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		if v.mode != modeBrowse {
			return v, v.updateInput(msg)
		}
		return v, v.updateBrowse(msg)
	}
	return v, nil
}

func (v *Viewer) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Back):
		v.navigate(v.ctrl.StepBackward)
	case key.Matches(msg, v.keys.Forward):
		v.navigate(v.ctrl.StepForward)
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor+1 < len(v.ctrl.Visible().Vars) {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Goto):
		if v.ctrl.Rendered() {
			return v.openInput(modeGoto, "goto ", "index", "")
		}
	case key.Matches(msg, v.keys.Edit):
		if name, ok := v.selectedVar(); ok {
			current, _ := v.edits.Get(name)
			return v.openInput(modeEdit, name+" → ", "target value", current)
		}
	case key.Matches(msg, v.keys.Unset):
		if name, ok := v.selectedVar(); ok {
			v.edits.Unset(name)
		}
	case key.Matches(msg, v.keys.Suggest):
		v.suggest()
	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
	case key.Matches(msg, v.keys.Cancel):
		v.banner.Dismiss()
	}
	return nil
}

func (v *Viewer) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		v.closeInput()
		return nil
	case key.Matches(msg, v.keys.Confirm):
		text := v.input.Value()
		mode := v.mode
		v.closeInput()
		switch mode {
		case modeGoto:
			idx, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				v.setStatus(fmt.Sprintf("invalid index %q", text), true)
				return nil
			}
			v.navigate(func() error { return v.ctrl.SetVisiblePoint(idx) })
		case modeEdit:
			if name, ok := v.selectedVar(); ok {
				if text == "" {
					v.edits.Unset(name)
				} else {
					v.edits.Set(name, text)
				}
			}
		}
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *Viewer) openInput(mode inputMode, prompt, placeholder, value string) tea.Cmd {
	v.mode = mode
	v.input.Prompt = prompt
	v.input.Placeholder = placeholder
	v.input.SetValue(value)
	v.input.CursorEnd()
	return v.input.Focus()
}

func (v *Viewer) closeInput() {
	v.mode = modeBrowse
	v.input.Blur()
	v.input.Reset()
}

// navigate runs a controller move. Edits and the variable cursor belong to
// the selected point and are dropped when it changes.
func (v *Viewer) navigate(move func() error) {
	before := v.ctrl.Index()
	if err := move(); err != nil {
		v.setStatus(err.Error(), true)
		return
	}
	if v.ctrl.Index() != before {
		v.edits.Reset()
		v.cursor = 0
		v.setStatus("", false)
	}
	v.refreshTree()
}

func (v *Viewer) suggest() {
	edits := v.edits.Ordered(v.ctrl.Visible())
	if _, ok := v.ctrl.RequestAdvice(edits); !ok {
		v.setStatus("nothing to suggest: edit a value first", true)
		return
	}
	v.setStatus(fmt.Sprintf("requested suggestions for %d goal(s)", len(edits)), false)
}

func (v *Viewer) selectedVar() (string, bool) {
	vars := v.ctrl.Visible().Vars
	if v.cursor < 0 || v.cursor >= len(vars) {
		return "", false
	}
	return vars[v.cursor].Name, true
}

func (v *Viewer) setStatus(s string, failed bool) {
	v.status = s
	v.failed = failed
}

func (v *Viewer) resize(width, height int) {
	if width > 0 {
		v.width = width
	}
	if height > 0 {
		v.height = height
	}
	v.prog.Width = max(v.width-4, 10)
	v.help.Width = v.width
	v.input.Width = max(v.width-20, 10)
	v.tree.Width = v.width
	v.tree.Height = max(v.height/2, 3)
	v.refreshTree()
}

// refreshTree re-renders the outline and scrolls the selection into view.
func (v *Viewer) refreshTree() {
	tree := v.ctrl.Tree()
	if tree == nil {
		v.tree.SetContent("(no trace loaded)")
		return
	}
	var buf bytes.Buffer
	opts := render.Options{Width: v.width, Selected: v.ctrl.Index()}
	if err := render.Tree(&buf, tree, opts); err != nil {
		v.tree.SetContent(err.Error())
		return
	}
	v.tree.SetContent(strings.TrimSuffix(buf.String(), "\n"))

	row := 0
	for _, r := range tree.Rows() {
		if r.Node.Index >= v.ctrl.Index() {
			break
		}
		row++
	}
	v.tree.SetYOffset(max(row-v.tree.Height/2, 0))
}

// View implements tea.Model.
func (v *Viewer) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.header()))
	b.WriteString("\n")
	if n := v.ctrl.Len(); n > 1 {
		b.WriteString(v.prog.ViewAs(float64(v.ctrl.Index()) / float64(n-1)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.tree.View())
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("locals"))
	b.WriteString("\n")
	b.WriteString(v.localsView())

	for _, a := range v.banner.Alerts() {
		b.WriteString("\n")
		b.WriteString(alertView(a))
	}
	if v.status != "" {
		b.WriteString("\n")
		if v.failed {
			b.WriteString(errorStyle.Render(v.status))
		} else {
			b.WriteString(statusStyle.Render(v.status))
		}
	}
	b.WriteString("\n")
	if v.mode != modeBrowse {
		b.WriteString(v.input.View())
		b.WriteString("\n")
		b.WriteString(v.help.View(inputKeys{v.keys}))
	} else {
		b.WriteString(v.help.View(v.keys))
	}
	b.WriteString("\n")
	return b.String()
}

func (v *Viewer) header() string {
	if !v.ctrl.Rendered() {
		return "tracescope"
	}
	snap := v.ctrl.Visible()
	return fmt.Sprintf("tracescope  point %d/%d  line %d  %s", snap.Index, v.ctrl.Len()-1, snap.Line, snap.Event)
}

func (v *Viewer) localsView() string {
	vars := v.ctrl.Visible().Vars
	if len(vars) == 0 {
		return "  (none)\n"
	}
	width := 0
	for _, vr := range vars {
		width = max(width, lipgloss.Width(vr.Name))
	}
	var b strings.Builder
	for i, vr := range vars {
		marker := "  "
		if i == v.cursor {
			marker = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-*s  %s", marker, width, vr.Name, vr.Display)
		if text, ok := v.edits.Get(vr.Name); ok {
			line += editStyle.Render("  → " + text)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func alertView(a notify.Alert) string {
	msg := alertStyle.Render(fmt.Sprintf("%s: %s", a.Severity, a.Message))
	if a.Details.Large && a.Details.Code != "" {
		return msg + "\n" + codeStyle.Render(a.Details.Code)
	}
	return msg
}
