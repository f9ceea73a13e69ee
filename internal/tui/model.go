// Package tui renders the roster editor as an interactive terminal grid.
package tui

import (
	"context"
	"fmt"

	"github.com/atinyakov/GophRoster/internal/editor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type focus int

const (
	focusTable focus = iota
	focusSearch
	focusCell
	focusDraft
)

var columns = []editor.Field{editor.FirstName, editor.LastName, editor.City}

// stateMsg carries a snapshot published by the editor.
type stateMsg editor.State

// opDoneMsg reports the end of a remote operation.
type opDoneMsg struct {
	op  string
	err error
}

// Model is the bubbletea model of the roster grid.
type Model struct {
	ed     *editor.Editor
	ctx    context.Context
	states chan editor.State

	state  editor.State
	focus  focus
	cursor int // row under the cursor; len(Records) is the draft row
	col    int

	cell   textinput.Model
	search textinput.Model

	inFlight int
	status   string
	err      error

	width  int
	height int
}

// New returns a model bound to ed. ctx bounds every remote call the model
// starts.
func New(ctx context.Context, ed *editor.Editor) Model {
	cell := textinput.New()
	cell.CharLimit = 128
	cell.Width = 18

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 128
	search.Width = 30

	return Model{
		ed:     ed,
		ctx:    ctx,
		state:  ed.State(),
		cell:   cell,
		search: search,
	}
}

// Subscribe starts forwarding editor state changes to the model and returns
// the unsubscribe func. Only the latest pending state is kept.
func (m *Model) Subscribe() func() {
	m.states = make(chan editor.State, 1)
	ch := m.states
	return m.ed.Subscribe(func(s editor.State) {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	})
}

// Init loads the collection and, if subscribed, starts listening for state.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run("load", m.ed.Load), m.listen())
}

func (m Model) listen() tea.Cmd {
	if m.states == nil {
		return nil
	}
	ch := m.states
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

// run executes a remote editor operation off the update loop.
func (m *Model) run(op string, fn func(context.Context) error) tea.Cmd {
	m.inFlight++
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case stateMsg:
		m.sync(editor.State(msg))
		return m, m.listen()

	case opDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		m.err = msg.err
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed", msg.op)
		} else {
			m.status = msg.op + " done"
		}
		m.sync(m.ed.State())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusCell:
			return m.updateCell(msg)
		case focusDraft:
			return m.updateDraft(msg)
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Records) {
			m.cursor++
		}
	case "/":
		m.focus = focusSearch
		m.search.Focus()
	case "r":
		return m, m.run("load", m.ed.Load)
	case "d":
		if m.cursor < len(m.state.Records) {
			id := m.state.Records[m.cursor].ID
			return m, m.run("delete", func(ctx context.Context) error { return m.ed.Delete(ctx, id) })
		}
	case "a":
		m.cursor = len(m.state.Records)
		m.enterDraft()
	case "enter":
		if m.cursor == len(m.state.Records) {
			m.enterDraft()
			return m, nil
		}
		id := m.state.Records[m.cursor].ID
		m.ed.BeginEdit(id)
		m.state = m.ed.State()
		m.focus = focusCell
		m.col = 0
		m.loadCell()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusTable
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.focus = focusTable
		m.search.Blur()
		m.cursor = 0
		return m, m.run("search", m.ed.Search)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ed.SetSearchText(m.search.Value())
	m.state = m.ed.State()
	return m, cmd
}

func (m Model) updateCell(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.state.EditingID
	switch msg.Type {
	case tea.KeyEsc:
		m.ed.CancelEdit()
		m.leaveCell()
		return m, nil
	case tea.KeyTab:
		m.col = (m.col + 1) % len(columns)
		m.loadCell()
		return m, nil
	case tea.KeyShiftTab:
		m.col = (m.col + len(columns) - 1) % len(columns)
		m.loadCell()
		return m, nil
	case tea.KeyEnter, tea.KeyCtrlS:
		return m, m.run("save", func(ctx context.Context) error { return m.ed.Save(ctx, id) })
	case tea.KeyCtrlD:
		return m, m.run("delete", func(ctx context.Context) error { return m.ed.Delete(ctx, id) })
	}
	var cmd tea.Cmd
	m.cell, cmd = m.cell.Update(msg)
	_ = m.ed.ChangeField(id, columns[m.col], m.cell.Value())
	m.state = m.ed.State()
	return m, cmd
}

func (m Model) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusTable
		m.cell.Blur()
		return m, nil
	case tea.KeyTab:
		m.col = (m.col + 1) % len(columns)
		m.loadDraftCell()
		return m, nil
	case tea.KeyShiftTab:
		m.col = (m.col + len(columns) - 1) % len(columns)
		m.loadDraftCell()
		return m, nil
	case tea.KeyEnter:
		m.col = 0
		m.loadDraftCell()
		m.cell.SetValue("")
		return m, m.run("add", m.ed.Add)
	}
	var cmd tea.Cmd
	m.cell, cmd = m.cell.Update(msg)
	_ = m.ed.SetDraft(columns[m.col], m.cell.Value())
	m.state = m.ed.State()
	return m, cmd
}

// sync adopts a new editor state and leaves cell editing when the editor no
// longer has a row in edit mode.
func (m *Model) sync(s editor.State) {
	m.state = s
	if m.cursor > len(s.Records) {
		m.cursor = len(s.Records)
	}
	if m.focus == focusCell && (s.EditingID == "" || s.EditingStale()) {
		m.leaveCell()
	}
}

func (m *Model) enterDraft() {
	m.focus = focusDraft
	m.col = 0
	m.loadDraftCell()
}

func (m *Model) leaveCell() {
	m.focus = focusTable
	m.cell.Blur()
	m.state = m.ed.State()
}

func (m *Model) loadCell() {
	rec, _ := m.state.Record(m.state.EditingID)
	m.cell.SetValue(fieldOf(rec.FName, rec.LName, rec.City, m.col))
	m.cell.CursorEnd()
	m.cell.Focus()
}

func (m *Model) loadDraftCell() {
	d := m.state.Draft
	m.cell.SetValue(fieldOf(d.FirstName, d.LastName, d.City, m.col))
	m.cell.CursorEnd()
	m.cell.Focus()
}

func fieldOf(first, last, city string, col int) string {
	switch columns[col] {
	case editor.FirstName:
		return first
	case editor.LastName:
		return last
	default:
		return city
	}
}

// Err returns the error of the last finished remote operation.
func (m Model) Err() error {
	return m.err
}
