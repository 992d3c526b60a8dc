// Package session runs the sequence of timed typing attempts.
package session

import (
	"time"

	"github.com/verte-zerg/digita/internal/model"
)

// Phase is the screen the session is on.
type Phase int

const (
	PhaseSelection Phase = iota
	PhaseInstructions
	PhaseTesting
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseSelection:
		return "selection"
	case PhaseInstructions:
		return "instructions"
	case PhaseTesting:
		return "testing"
	case PhaseResults:
		return "results"
	}
	return "unknown"
}

// Step is one entry of the attempt sequence.
type Step struct {
	Mode       model.Mode
	Difficulty model.Difficulty
}

// Sequence returns the three attempts of a session in increasing difficulty.
func Sequence(mode model.Mode) []Step {
	steps := make([]Step, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		steps = append(steps, Step{Mode: mode, Difficulty: d})
	}
	return steps
}

// Clock holds the attempt timer. Running and Paused are never both true.
type Clock struct {
	StartTime time.Time
	// PausedAccumulated is the elapsed time frozen at the last pause.
	PausedAccumulated time.Duration
	Running           bool
	Paused            bool
}

// State is the single mutable record of a session. Only Machine mutates it.
type State struct {
	SessionID    string
	Phase        Phase
	Mode         model.Mode
	Sequence     []Step
	AttemptIndex int
	Attempts     []model.TestAttempt

	Reference  model.ReferenceText
	Clock      Clock
	Input      string
	Live       model.Metrics
	StartedAt  time.Time
	LastErrors []model.TextError

	// Violation is set between an integrity violation and the reset it triggers.
	Violation bool
}

// Current returns the step of the attempt in progress or about to start.
func (s State) Current() (Step, bool) {
	if s.AttemptIndex < 0 || s.AttemptIndex >= len(s.Sequence) {
		return Step{}, false
	}
	return s.Sequence[s.AttemptIndex], true
}

// IsLast reports whether the current step is the last of the sequence.
func (s State) IsLast() bool {
	return len(s.Sequence) > 0 && s.AttemptIndex == len(s.Sequence)-1
}

// LastAttempt returns the most recently finalized attempt.
func (s State) LastAttempt() (model.TestAttempt, bool) {
	if len(s.Attempts) == 0 {
		return model.TestAttempt{}, false
	}
	return s.Attempts[len(s.Attempts)-1], true
}

func (s State) clone() State {
	out := s
	out.Sequence = append([]Step(nil), s.Sequence...)
	out.Attempts = append([]model.TestAttempt(nil), s.Attempts...)
	out.LastErrors = append([]model.TextError(nil), s.LastErrors...)
	return out
}
