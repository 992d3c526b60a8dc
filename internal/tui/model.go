// Package tui provides the Bubble Tea typing assessment interface.
package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/digita/internal/clock"
	"github.com/verte-zerg/digita/internal/dictation"
	"github.com/verte-zerg/digita/internal/integrity"
	"github.com/verte-zerg/digita/internal/log"
	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/session"
)

const noticeTTL = 4 * time.Second

// callbackMsg carries a function posted from another goroutine to the UI loop.
type callbackMsg func()

// Poster returns a post function that runs callbacks inside p's update loop.
func Poster(p *tea.Program) func(func()) {
	return func(f func()) {
		p.Send(callbackMsg(f))
	}
}

// Config wires the interface to the assessment engine.
type Config struct {
	Clock   clock.Clock
	Texts   session.TextProvider
	Sink    session.ResultSink
	Speaker dictation.Speaker
	Lang    string
	Rate    float64
	// User prefills the identification form; a valid user skips it.
	User model.UserData
	// Mode preselects the test type on the selection screen.
	Mode model.Mode
}

// Model implements the Bubble Tea assessment UI.
type Model struct {
	machine *session.Machine
	clock   clock.Clock

	width  int
	height int

	form     userForm
	needUser bool
	choice   int

	notice    model.Notice
	noticeSeq int
	errView   viewport.Model
	shown     string
	quitting  bool
}

var modeChoices = []model.Mode{model.Texto, model.Audio}

// NewModel constructs the assessment TUI model.
func NewModel(cfg Config) (*Model, error) {
	m := &Model{clock: cfg.Clock, errView: viewport.New(60, 8)}
	machine, err := session.New(session.Options{
		Clock:     cfg.Clock,
		Texts:     cfg.Texts,
		Sink:      cfg.Sink,
		Speaker:   cfg.Speaker,
		Lang:      cfg.Lang,
		Rate:      cfg.Rate,
		Integrity: integrity.New(),
		Notify:    m.pushNotice,
	})
	if err != nil {
		return nil, err
	}
	m.machine = machine
	m.form = newUserForm(cfg.User)
	m.needUser = machine.SetUser(cfg.User) != nil
	if cfg.Mode == model.Audio {
		m.choice = 1
	}
	return m, nil
}

// Machine exposes the session engine.
func (m *Model) Machine() *session.Machine {
	return m.machine
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	m.syncErrors()
	return next, cmd
}

func (m *Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callbackMsg:
		msg()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.errView.Width = m.contentWidth()
		m.errView.Height = max(3, m.height/3)
		if a, ok := m.machine.Snapshot().LastAttempt(); ok {
			m.errView.SetContent(renderErrorList(a.Errors, m.contentWidth()))
		}
		return m, nil
	case tea.BlurMsg:
		m.machine.HandleBlur()
		return m, nil
	case tea.FocusMsg:
		return m, nil
	case tea.ResumeMsg:
		m.machine.HandleVisibility(false)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		if m.machine.HandlePaste() {
			return m, nil
		}
	} else if m.machine.HandleKey(integrity.ParseKey(msg.String())) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quit()
		return m, tea.Quit
	case tea.KeyCtrlZ:
		m.machine.HandleVisibility(true)
		return m, tea.Suspend
	}

	if m.needUser {
		return m.updateForm(msg)
	}
	switch m.machine.Phase() {
	case session.PhaseSelection:
		return m.updateSelection(msg)
	case session.PhaseInstructions:
		return m.updateInstructions(msg)
	case session.PhaseTesting:
		return m.updateTesting(msg)
	case session.PhaseResults:
		return m.updateResults(msg)
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submitted, cmd := m.form.update(msg)
	if !submitted {
		return m, cmd
	}
	if err := m.machine.SetUser(m.form.user()); err != nil {
		m.form.errMsg = err.Error()
		return m, nil
	}
	m.form.errMsg = ""
	m.needUser = false
	return m, nil
}

func (m *Model) updateSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "left", "k", "h":
		m.choice = (m.choice + len(modeChoices) - 1) % len(modeChoices)
	case "down", "right", "j", "l", "tab":
		m.choice = (m.choice + 1) % len(modeChoices)
	case "1":
		m.choice = 0
	case "2":
		m.choice = 1
	case "enter", " ":
		if err := m.machine.SelectMode(modeChoices[m.choice]); err != nil {
			m.pushError(err)
		}
	case "u":
		m.needUser = true
	case "q":
		m.quit()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateInstructions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		if err := m.machine.Start(); err != nil {
			if errors.Is(err, session.ErrNotReady) {
				m.needUser = true
				return m, nil
			}
			m.pushError(err)
		}
	case "esc":
		if err := m.machine.NewSession(); err != nil {
			m.pushError(err)
		}
	}
	return m, nil
}

func (m *Model) updateTesting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+p", "esc":
		_ = m.machine.TogglePause()
		return m, nil
	case "ctrl+f":
		_ = m.machine.Finish()
		return m, nil
	case "ctrl+a":
		_, _ = m.machine.ToggleAudio()
		return m, nil
	case "ctrl+r":
		_ = m.machine.RestartAudio()
		return m, nil
	}

	input := m.machine.Snapshot().Input
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if input == "" {
			return m, nil
		}
		r := []rune(input)
		input = string(r[:len(r)-1])
	case tea.KeyCtrlW:
		input = deleteLastWord(input)
	case tea.KeySpace:
		input += " "
	case tea.KeyRunes:
		input += string(msg.Runes)
	default:
		return m, nil
	}
	if err := m.machine.SetInput(input); err != nil && !errors.Is(err, session.ErrNotRunning) {
		log.Warnf("input rejected: %v", err)
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "enter":
		if !m.machine.Snapshot().IsLast() {
			if err := m.machine.Next(); err != nil {
				m.pushError(err)
			}
		}
		return m, nil
	case "r":
		if err := m.machine.NewSession(); err != nil {
			m.pushError(err)
		}
		return m, nil
	case "q":
		m.quit()
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.errView, cmd = m.errView.Update(msg)
	return m, cmd
}

// pushNotice shows n in the footer until a newer notice replaces it or it expires.
func (m *Model) pushNotice(n model.Notice) {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = n
	if m.clock == nil {
		return
	}
	m.clock.AfterFunc(noticeTTL, func() {
		if m.noticeSeq == seq {
			m.notice = model.Notice{}
		}
	})
}

func (m *Model) pushError(err error) {
	log.Warnf("command failed: %v", err)
	m.pushNotice(model.Notice{Level: model.NoticeError, Message: err.Error()})
}

// syncErrors loads the error list of a newly finished attempt into the viewport.
func (m *Model) syncErrors() {
	a, ok := m.machine.Snapshot().LastAttempt()
	if !ok || a.ID == m.shown {
		return
	}
	m.shown = a.ID
	m.errView.SetContent(renderErrorList(a.Errors, m.contentWidth()))
	m.errView.GotoTop()
}

func (m *Model) quit() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.machine.Close()
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(1, int(float64(m.width)*0.70))
}

func deleteLastWord(s string) string {
	trimmed := strings.TrimRight(s, " ")
	if i := strings.LastIndex(trimmed, " "); i >= 0 {
		return trimmed[:i+1]
	}
	return ""
}
