package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputLocal
	inputRecursive
)

type (
	eventMsg        catalog.Event
	eventsClosedMsg struct{}
	errMsg          struct{ err error }
	viewerMsg       struct{ text string }
)

// Options configures the browser.
type Options struct {
	// Start is the first directory shown. Empty means the controller's root.
	Start string
	// Owners are the tag owners the owner key cycles through.
	Owners []model.TagOwner
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctrl *catalog.Controller
	opts Options
	keys keyMap

	table   table.Model
	input   textinput.Model
	spinner spinner.Model
	mode    inputMode

	items   []model.FileItem
	path    string
	query   string
	loading bool
	// owner indexes opts.Owners, -1 when no owner is selected.
	owner  int
	status string
	err    error
}

func newModel(c *catalog.Controller, opts Options) Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	t.SetStyles(tableStyles())

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctrl:    c,
		opts:    opts,
		keys:    defaultKeys(),
		table:   t,
		input:   ti,
		spinner: sp,
		path:    c.Root(),
		owner:   -1,
	}
}

// Run shows the browser until the user quits or ctx is canceled, then closes
// the controller.
func Run(ctx context.Context, c *catalog.Controller, opts Options) error {
	p := tea.NewProgram(newModel(c, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		err = nil
	}
	return errors.Join(err, c.Close())
}

func waitForEvent(events <-chan catalog.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.ctrl.Events()), m.start())
}

func (m Model) start() tea.Cmd {
	ctrl, start := m.ctrl, m.opts.Start
	return func() tea.Msg {
		var err error
		if start == "" || start == ctrl.Root() {
			err = ctrl.Open()
		} else {
			err = ctrl.Navigate(start)
		}
		if err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(catalog.Event(msg))
		return m, waitForEvent(m.ctrl.Events())
	case eventsClosedMsg:
		return m, tea.Quit
	case errMsg:
		m.setErr(msg.err)
		return m, nil
	case viewerMsg:
		m.err = nil
		m.status = msg.text
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		m.table.SetColumns(columns(msg.Width))
		return m, nil
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		query := m.input.Value()
		recursive := m.mode == inputRecursive
		m.closeInput()
		m.setErr(m.ctrl.Search(query, recursive))
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Open):
		if item, ok := m.selected(); ok {
			return m, m.activate(item)
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if !m.ctrl.CanUp() {
			m.status = "already at the top"
			return m, nil
		}
		m.setErr(m.ctrl.Up())
		return m, nil
	case key.Matches(msg, m.keys.Local):
		return m, m.openInput(inputLocal, "filter: ")
	case key.Matches(msg, m.keys.Recursive):
		return m, m.openInput(inputRecursive, "search below: ")
	case key.Matches(msg, m.keys.Refresh):
		m.setErr(m.ctrl.Refresh())
		return m, nil
	case key.Matches(msg, m.keys.Tag):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.owner < 0 {
			m.status = "press o to pick a tag owner"
			return m, nil
		}
		_, err := m.ctrl.ToggleTag(item)
		m.setErr(err)
		return m, nil
	case key.Matches(msg, m.keys.Owner):
		m.cycleOwner()
		return m, nil
	case key.Matches(msg, m.keys.FixTimes):
		m.setErr(m.ctrl.FixDirTimes())
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if m.query != "" {
			m.setErr(m.ctrl.ClearSearch())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if item, ok := m.selected(); ok {
		m.ctrl.Select(item.Path)
	}
	return m, cmd
}

func (m *Model) openInput(mode inputMode, prompt string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) cycleOwner() {
	if len(m.opts.Owners) == 0 {
		m.status = "no tag owners; add one with: media-catalog tags add-owner <name>"
		return
	}
	m.owner++
	if m.owner >= len(m.opts.Owners) {
		m.owner = -1
		m.ctrl.SelectOwner(nil)
		m.status = "tagging off"
		return
	}
	o := m.opts.Owners[m.owner]
	m.ctrl.SelectOwner(&o)
	m.status = "tagging for " + o.Name
}

// apply folds one controller event into the view.
func (m *Model) apply(ev catalog.Event) {
	switch ev.Type {
	case catalog.EventLoading:
		m.loading = true
		m.path = ev.Path
		if ev.Query != "" {
			m.status = fmt.Sprintf("searching for %q", ev.Query)
		} else {
			m.status = "loading"
		}
	case catalog.EventLoaded:
		m.err = nil
		m.path = ev.Path
		m.query = ""
		m.loading = ev.Stale
		m.setItems(ev.Items)
		m.status = strconv.Itoa(len(ev.Items)) + " items"
		if ev.Stale {
			m.status += " (cached, refreshing)"
		}
	case catalog.EventSearchLoaded:
		m.loading = false
		m.query = ev.Query
		m.setItems(ev.Items)
		m.status = fmt.Sprintf("%d matches for %q", len(ev.Items), ev.Query)
	case catalog.EventError:
		m.err = ev.Err
	case catalog.EventTagChanged:
		for i := range m.items {
			if m.items[i].Path == ev.Path {
				m.items[i].HasTag = ev.Tagged
			}
		}
		m.table.SetRows(rowsFor(m.items))
		if ev.Tagged {
			m.status = "tagged " + ev.Path
		} else {
			m.status = "untagged " + ev.Path
		}
	case catalog.EventTimesFixed:
		m.status = fmt.Sprintf("%d folder times updated", ev.Count)
	}
}

func (m *Model) setItems(items []model.FileItem) {
	m.items = items
	m.table.SetRows(rowsFor(items))

	cursor := 0
	for i, it := range items {
		if it.IsSelected {
			cursor = i
			break
		}
	}
	m.table.SetCursor(cursor)
}

func (m *Model) setErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrBusy):
		m.status = "busy, try again in a moment"
	case errors.Is(err, catalog.ErrAtRoot):
		m.status = "already at the top"
	default:
		m.err = err
	}
}

func (m Model) selected() (model.FileItem, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.FileItem{}, false
	}
	return m.items[i], true
}

func (m Model) activate(item model.FileItem) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		v, err := ctrl.Activate(item)
		if err != nil {
			return errMsg{err}
		}
		if v == nil {
			return nil
		}
		text, err := describeViewer(ctrl, *v)
		if err != nil {
			return errMsg{err}
		}
		return viewerMsg{text}
	}
}

// describeViewer receives what a viewer would be handed and summarizes it.
func describeViewer(ctrl *catalog.Controller, v catalog.Viewer) (string, error) {
	switch v.Kind {
	case mediatypes.KindPhoto:
		photos, err := ctrl.ReceiveGallery(v)
		if err != nil {
			return "", err
		}
		if v.Index >= len(photos) {
			return "gallery is empty", nil
		}
		return fmt.Sprintf("gallery: %s (%d of %d)", photos[v.Index].Text, v.Index+1, len(photos)), nil
	case mediatypes.KindVideo:
		return "video: " + v.Video.Title, nil
	case mediatypes.KindAudio:
		if v.Index >= len(v.Tracks) {
			return "playlist is empty", nil
		}
		t := v.Tracks[v.Index]
		return fmt.Sprintf("playlist: %s - %s (%d of %d)", t.Artist, t.Title, v.Index+1, len(v.Tracks)), nil
	}
	return "", fmt.Errorf("%w: %s", catalog.ErrNotViewable, v.Kind)
}

func (m Model) View() string {
	var b strings.Builder

	header := headerStyle.Render(m.path)
	if m.query != "" {
		header += statusStyle.Render(fmt.Sprintf("  matching %q", m.query))
	}
	if m.owner >= 0 {
		header += ownerStyle.Render("  [" + m.opts.Owners[m.owner].Name + "]")
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.mode != inputNone {
		b.WriteString(inputStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	status := m.status
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")

	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(parts, " · ")))
	return b.String()
}

func columns(width int) []table.Column {
	const kindW, sizeW, modW, tagW = 6, 10, 16, 1
	nameW := max(width-kindW-sizeW-modW-tagW-12, 20)
	return []table.Column{
		{Title: "", Width: tagW},
		{Title: "Name", Width: nameW},
		{Title: "Kind", Width: kindW},
		{Title: "Size", Width: sizeW},
		{Title: "Modified", Width: modW},
	}
}

func rowsFor(items []model.FileItem) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		mark, name := "", it.Name
		if it.HasTag {
			mark = "*"
		}
		if it.IsFolder() {
			name += "/"
		}
		rows = append(rows, table.Row{
			mark,
			name,
			it.Kind.String(),
			strconv.FormatInt(it.Size, 10),
			it.ModTime().Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

