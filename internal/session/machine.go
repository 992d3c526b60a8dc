package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/digita/internal/classify"
	"github.com/verte-zerg/digita/internal/clock"
	"github.com/verte-zerg/digita/internal/dictation"
	"github.com/verte-zerg/digita/internal/identity"
	"github.com/verte-zerg/digita/internal/integrity"
	"github.com/verte-zerg/digita/internal/log"
	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/stats"
)

var (
	// ErrNotReady is returned when an attempt is started without participant data.
	ErrNotReady = errors.New("participant data required before starting")
	// ErrInputTooShort is returned by a manual finish with too little typed text.
	ErrInputTooShort = fmt.Errorf("type at least %d characters to finish", MinFinishChars)
	// ErrInvalidPhase is returned for a command the current phase does not accept.
	ErrInvalidPhase = errors.New("command not allowed in this phase")
	// ErrNotRunning is returned for a command that needs a running (or paused) attempt.
	ErrNotRunning = errors.New("attempt is not running")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

const (
	// MinFinishChars is the least trimmed input a manual finish accepts.
	MinFinishChars = 10
	// TickInterval is the cadence of the attempt timer.
	TickInterval = 100 * time.Millisecond
	// DictationLeadIn delays the first phrase of an audio attempt.
	DictationLeadIn = time.Second
)

// TextProvider supplies reference texts.
type TextProvider interface {
	Random(d model.Difficulty) (model.ReferenceText, error)
}

// ResultSink delivers finished attempts. done runs on the event loop.
type ResultSink interface {
	Submit(sub model.Submission, done func(error))
}

// Options configures a Machine.
type Options struct {
	Clock   clock.Clock
	Texts   TextProvider
	Sink    ResultSink
	Speaker dictation.Speaker
	// Lang, Rate and PhraseGap configure dictation; zero values use its defaults.
	Lang      string
	Rate      float64
	PhraseGap time.Duration
	Integrity integrity.Monitor
	Notify    func(model.Notice)
	NewID     func() string
}

// Machine owns the session State. All methods, and every callback it
// schedules on its Clock, must run on a single event loop.
type Machine struct {
	opts    Options
	clock   clock.Clock
	state   State
	user    model.UserData
	hasUser bool

	dict    *dictation.Sequencer
	monitor integrity.Monitor
	tick    clock.Timer
	reset   clock.Timer
	closed  bool
}

// New returns a Machine in the selection phase.
func New(opts Options) (*Machine, error) {
	if opts.Clock == nil {
		return nil, fmt.Errorf("session clock is required")
	}
	if opts.Texts == nil {
		return nil, fmt.Errorf("session text provider is required")
	}
	if opts.Speaker == nil {
		opts.Speaker = silentSpeaker{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	m := &Machine{opts: opts, clock: opts.Clock, monitor: opts.Integrity}
	m.dict = dictation.New(opts.Clock, opts.Speaker, dictation.Options{
		Lang:   opts.Lang,
		Rate:   opts.Rate,
		Gap:    opts.PhraseGap,
		Active: m.active,
		OnError: func(err error) {
			log.Warnf("dictation stopped: %v", err)
		},
	})
	m.state = State{SessionID: opts.NewID(), Phase: PhaseSelection}
	return m, nil
}

// SetUser validates and stores the participant.
func (m *Machine) SetUser(u model.UserData) error {
	if m.closed {
		return ErrClosed
	}
	u = identity.Normalize(u)
	if err := identity.Validate(u); err != nil {
		return err
	}
	m.user = u
	m.hasUser = true
	return nil
}

// User returns the participant, if set.
func (m *Machine) User() (model.UserData, bool) {
	return m.user, m.hasUser
}

// SelectMode fixes the attempt sequence and moves to the instructions.
func (m *Machine) SelectMode(mode model.Mode) error {
	if err := m.require(PhaseSelection); err != nil {
		return err
	}
	if _, err := model.ParseMode(string(mode)); err != nil {
		return err
	}
	m.state.Mode = mode
	m.state.Sequence = Sequence(mode)
	m.state.AttemptIndex = 0
	m.state.Attempts = nil
	m.state.Phase = PhaseInstructions
	return nil
}

// Start begins the timed attempt described by the instructions.
func (m *Machine) Start() error {
	if err := m.require(PhaseInstructions); err != nil {
		return err
	}
	if !m.hasUser {
		return ErrNotReady
	}
	if err := m.begin(); err != nil {
		return err
	}
	m.notify(model.NoticeSuccess, "Teste iniciado! Boa sorte!")
	return nil
}

// Pause freezes the timer and stops dictation.
func (m *Machine) Pause() error {
	if err := m.require(PhaseTesting); err != nil {
		return err
	}
	if !m.state.Clock.Running {
		return ErrNotRunning
	}
	m.state.Clock.PausedAccumulated = m.clock.Now().Sub(m.state.Clock.StartTime)
	m.state.Clock.Running = false
	m.state.Clock.Paused = true
	m.stopTick()
	if m.isAudio() {
		m.dict.Cancel()
	}
	log.Debugf("attempt paused at %s", m.state.Clock.PausedAccumulated)
	m.notify(model.NoticeInfo, "Teste pausado")
	return nil
}

// Resume continues a paused attempt; the paused gap does not count as elapsed time.
func (m *Machine) Resume() error {
	if err := m.require(PhaseTesting); err != nil {
		return err
	}
	if !m.state.Clock.Paused {
		return ErrNotRunning
	}
	m.state.Clock.StartTime = m.clock.Now().Add(-m.state.Clock.PausedAccumulated)
	m.state.Clock.Running = true
	m.state.Clock.Paused = false
	m.scheduleTick()
	if m.isAudio() {
		m.dict.Resume()
	}
	log.Debugf("attempt resumed at %s", m.state.Clock.PausedAccumulated)
	m.notify(model.NoticeInfo, "Teste retomado")
	return nil
}

// TogglePause pauses a running attempt or resumes a paused one.
func (m *Machine) TogglePause() error {
	if m.state.Clock.Paused {
		return m.Resume()
	}
	return m.Pause()
}

// SetInput replaces the typed text and refreshes the live metrics.
func (m *Machine) SetInput(text string) error {
	if err := m.require(PhaseTesting); err != nil {
		return err
	}
	if !m.state.Clock.Running {
		return ErrNotRunning
	}
	m.state.Input = text
	m.refreshLive()
	return nil
}

// Finish ends the attempt on the participant's request.
func (m *Machine) Finish() error {
	if err := m.require(PhaseTesting); err != nil {
		return err
	}
	if !m.state.Clock.Running && !m.state.Clock.Paused {
		return ErrNotRunning
	}
	if utf8.RuneCountInString(strings.TrimSpace(m.state.Input)) < MinFinishChars {
		m.notify(model.NoticeError, fmt.Sprintf("Digite pelo menos %d caracteres para finalizar o teste", MinFinishChars))
		return ErrInputTooShort
	}
	m.finish(model.FinishManual)
	return nil
}

// Next moves from an audio attempt's results to the next instructions.
func (m *Machine) Next() error {
	if err := m.require(PhaseResults); err != nil {
		return err
	}
	if m.state.IsLast() {
		return ErrInvalidPhase
	}
	m.state.AttemptIndex++
	m.state.Phase = PhaseInstructions
	m.state.Reference = model.ReferenceText{}
	m.state.Input = ""
	m.state.Live = model.Metrics{}
	m.state.LastErrors = nil
	return nil
}

// NewSession discards the history and returns to mode selection.
func (m *Machine) NewSession() error {
	if m.closed {
		return ErrClosed
	}
	if m.state.Phase == PhaseTesting {
		return ErrInvalidPhase
	}
	m.resetSession()
	return nil
}

// ToggleAudio stops dictation when it is speaking and replays the current
// phrase otherwise. It reports whether dictation is speaking afterwards.
func (m *Machine) ToggleAudio() (bool, error) {
	if err := m.requireDictation(); err != nil {
		return false, err
	}
	speaking := m.dict.Toggle()
	if speaking {
		m.notify(model.NoticeInfo, "Reproduzindo áudio...")
	} else {
		m.notify(model.NoticeInfo, "Áudio pausado")
	}
	return speaking, nil
}

// RestartAudio replays the dictation from the first phrase.
func (m *Machine) RestartAudio() error {
	if err := m.requireDictation(); err != nil {
		return err
	}
	m.dict.Restart()
	m.notify(model.NoticeInfo, "Áudio reiniciado")
	return nil
}

// HandleVisibility reacts to the terminal being hidden or shown again.
func (m *Machine) HandleVisibility(hidden bool) {
	if m.closed {
		return
	}
	m.apply(m.monitor.Visibility(hidden, m.Status()))
}

// HandleBlur reacts to the terminal losing focus.
func (m *Machine) HandleBlur() {
	if m.closed {
		return
	}
	m.apply(m.monitor.Blur(m.Status()))
}

// HandleKey reports whether the key must be suppressed.
func (m *Machine) HandleKey(k integrity.Key) bool {
	if m.closed {
		return false
	}
	return m.apply(m.monitor.Key(k, m.Status())) == integrity.Block
}

// HandlePaste reports whether pasted text must be discarded.
func (m *Machine) HandlePaste() bool {
	if m.closed {
		return false
	}
	return m.apply(m.monitor.Paste(m.Status())) == integrity.Block
}

// Close cancels dictation and every pending timer. Later commands return ErrClosed.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.stopTick()
	m.stopReset()
	m.dict.Cancel()
}

// Snapshot returns a copy of the session state.
func (m *Machine) Snapshot() State {
	return m.state.clone()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase
}

// Status reports whether an attempt is on screen and running.
func (m *Machine) Status() integrity.Status {
	return integrity.Status{
		Testing: m.state.Phase == PhaseTesting,
		Running: m.state.Clock.Running,
	}
}

// Elapsed returns the attempt time, excluding pauses.
func (m *Machine) Elapsed() time.Duration {
	c := m.state.Clock
	switch {
	case c.Running:
		return m.clock.Now().Sub(c.StartTime)
	case c.Paused:
		return c.PausedAccumulated
	}
	if a, ok := m.state.LastAttempt(); ok && m.state.Phase == PhaseResults {
		return time.Duration(a.ElapsedSeconds) * time.Second
	}
	return 0
}

// Remaining returns the time left in the current attempt's budget.
func (m *Machine) Remaining() time.Duration {
	step, ok := m.state.Current()
	if !ok {
		return 0
	}
	return max(0, step.Difficulty.TimeBudget()-m.Elapsed())
}

// Dictation returns the dictation progress of the current attempt.
func (m *Machine) Dictation() dictation.State {
	return m.dict.State()
}

// Totals averages the finished attempts of the session.
func (m *Machine) Totals() stats.SessionTotals {
	return stats.Totals(m.state.Attempts)
}

func (m *Machine) begin() error {
	step, ok := m.state.Current()
	if !ok {
		return ErrInvalidPhase
	}
	ref, err := m.opts.Texts.Random(step.Difficulty)
	if err != nil {
		return fmt.Errorf("failed to load reference text: %w", err)
	}
	now := m.clock.Now()
	m.state.Reference = ref
	m.state.Input = ""
	m.state.Clock = Clock{StartTime: now, Running: true}
	m.state.Live = model.Metrics{}
	m.state.LastErrors = nil
	m.state.StartedAt = now
	m.state.Phase = PhaseTesting
	m.scheduleTick()
	if step.Mode == model.Audio {
		m.dict.Load(ref.Body)
		m.dict.PlayAfter(DictationLeadIn, 0)
	}
	log.AttemptStart(m.state.SessionID, step.Mode, step.Difficulty, ref.ID)
	return nil
}

func (m *Machine) finish(reason model.FinishReason) {
	step, _ := m.state.Current()
	elapsed := m.Elapsed()
	m.stopTick()
	if step.Mode == model.Audio {
		m.dict.Cancel()
	}
	m.state.Clock.Running = false
	m.state.Clock.Paused = false

	secs := int(elapsed / time.Second)
	input := m.state.Input
	ref := m.state.Reference
	metrics := stats.Final(ref.Body, input, secs)
	errs := classify.DetectErrors(ref.Body, input)
	attempt := model.TestAttempt{
		ID:             m.opts.NewID(),
		Mode:           step.Mode,
		Difficulty:     step.Difficulty,
		Reference:      ref,
		TypedText:      input,
		ElapsedSeconds: secs,
		WPM:            metrics.WPM,
		Accuracy:       metrics.Accuracy,
		Errors:         errs,
		Reason:         reason,
		StartedAt:      m.state.StartedAt,
		EndedAt:        m.clock.Now(),
	}
	m.state.Attempts = append(m.state.Attempts, attempt)
	m.state.Live = metrics
	m.state.LastErrors = errs
	log.AttemptFinish(m.state.SessionID, attempt)
	m.submit(attempt)

	if step.Mode == model.Texto && !m.state.IsLast() {
		m.state.AttemptIndex++
		next, _ := m.state.Current()
		if err := m.begin(); err != nil {
			log.Errorf("failed to start next attempt: %v", err)
			m.state.Phase = PhaseResults
			m.notify(model.NoticeError, "Não foi possível carregar o próximo texto.")
			return
		}
		m.notify(model.NoticeSuccess, fmt.Sprintf("Iniciando nível %s...", next.Difficulty.Label()))
		return
	}
	m.state.Phase = PhaseResults
	m.notify(model.NoticeSuccess, "Nível finalizado!")
}

func (m *Machine) submit(attempt model.TestAttempt) {
	if m.opts.Sink == nil {
		return
	}
	sub := model.Submission{SessionID: m.state.SessionID, User: m.user, Attempt: attempt}
	m.notify(model.NoticeInfo, "Salvando resultados...")
	m.opts.Sink.Submit(sub, func(err error) {
		if m.closed {
			return
		}
		if err != nil {
			log.Errorf("failed to deliver attempt %s: %v", attempt.ID, err)
			m.notify(model.NoticeError, "Erro ao salvar resultado.")
			return
		}
		m.notify(model.NoticeSuccess, "Resultado salvo com sucesso!")
	})
}

func (m *Machine) scheduleTick() {
	m.stopTick()
	m.tick = m.clock.AfterFunc(TickInterval, m.onTick)
}

// onTick reads the live clock flags; a tick that outlived a pause or a
// finish does nothing.
func (m *Machine) onTick() {
	m.tick = nil
	if m.closed || m.state.Phase != PhaseTesting || !m.state.Clock.Running {
		return
	}
	step, _ := m.state.Current()
	if m.Elapsed() >= step.Difficulty.TimeBudget() {
		m.notify(model.NoticeInfo, "Tempo esgotado! Finalizando teste...")
		m.finish(model.FinishTimeout)
		return
	}
	m.refreshLive()
	m.scheduleTick()
}

func (m *Machine) refreshLive() {
	if m.state.Input == "" {
		return
	}
	secs := int(m.Elapsed() / time.Second)
	m.state.Live = stats.Live(m.state.Reference.Body, m.state.Input, secs)
}

func (m *Machine) apply(v integrity.Verdict) integrity.Action {
	if v.Action == integrity.Ignore {
		return v.Action
	}
	log.Integrity(m.state.SessionID, v.Event, v.Action == integrity.Violation)
	m.opts.notify(v.Notice)
	if v.Action == integrity.Violation {
		m.abort()
	}
	return v.Action
}

// abort stops the attempt at once and resets the whole session after the
// monitor's delay.
func (m *Machine) abort() {
	m.stopTick()
	m.dict.Cancel()
	m.state.Clock.Running = false
	m.state.Clock.Paused = false
	m.state.Violation = true
	m.stopReset()
	m.reset = m.clock.AfterFunc(m.monitor.Delay(), func() {
		m.reset = nil
		if m.closed || !m.state.Violation {
			return
		}
		m.resetSession()
	})
}

func (m *Machine) resetSession() {
	m.stopTick()
	m.stopReset()
	m.dict.Cancel()
	m.state = State{SessionID: m.opts.NewID(), Phase: PhaseSelection}
}

func (m *Machine) active() bool {
	return !m.closed && m.state.Phase == PhaseTesting && m.state.Clock.Running && !m.state.Clock.Paused
}

func (m *Machine) isAudio() bool {
	step, ok := m.state.Current()
	return ok && step.Mode == model.Audio
}

func (m *Machine) require(p Phase) error {
	if m.closed {
		return ErrClosed
	}
	if m.state.Phase != p {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, m.state.Phase)
	}
	return nil
}

func (m *Machine) requireDictation() error {
	if err := m.require(PhaseTesting); err != nil {
		return err
	}
	if !m.isAudio() {
		return ErrInvalidPhase
	}
	if !m.active() {
		return ErrNotRunning
	}
	return nil
}

func (m *Machine) stopTick() {
	if m.tick != nil {
		m.tick.Stop()
		m.tick = nil
	}
}

func (m *Machine) stopReset() {
	if m.reset != nil {
		m.reset.Stop()
		m.reset = nil
	}
}

func (m *Machine) notify(level model.NoticeLevel, msg string) {
	m.opts.notify(model.Notice{Level: level, Message: msg})
}

func (o Options) notify(n model.Notice) {
	if o.Notify != nil {
		o.Notify(n)
	}
}

var errNoSpeech = errors.New("no speech backend configured")

type silentSpeaker struct{}

func (silentSpeaker) Speak(_, _ string, _ float64, done func(error)) { done(errNoSpeech) }
func (silentSpeaker) Cancel() {}
