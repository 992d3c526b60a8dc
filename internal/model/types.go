// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Difficulty is the level of a reference text.
type Difficulty string

const (
	Facil   Difficulty = "facil"
	Medio   Difficulty = "medio"
	Dificil Difficulty = "dificil"
)

// Difficulties lists every level in increasing order.
var Difficulties = []Difficulty{Facil, Medio, Dificil}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Facil, Medio, Dificil:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (expected facil, medio or dificil)", s)
}

// Label returns the display name used on screen.
func (d Difficulty) Label() string {
	switch d {
	case Facil:
		return "Fácil"
	case Medio:
		return "Moderado"
	case Dificil:
		return "Difícil"
	}
	return string(d)
}

// TimeBudget returns how long an attempt at this difficulty may run.
func (d Difficulty) TimeBudget() time.Duration {
	switch d {
	case Medio:
		return 180 * time.Second
	case Dificil:
		return 300 * time.Second
	default:
		return 120 * time.Second
	}
}

// Mode is how the reference text is presented.
type Mode string

const (
	Texto Mode = "texto"
	Audio Mode = "audio"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Texto, Audio:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (expected texto or audio)", s)
}

// Label returns the display name used on screen.
func (m Mode) Label() string {
	if m == Audio {
		return "Áudio"
	}
	return "Texto"
}

// ReferenceText is one catalog entry.
type ReferenceText struct {
	ID         int
	Difficulty Difficulty
	Body       string
	// AudioCue is an external recording reference. Dictation never uses it.
	AudioCue string
}

// CharacterComparison is one index of a reference/typed alignment.
// Expected and Typed are empty at positions past the end of their string.
type CharacterComparison struct {
	Index     int
	Expected  string
	Typed     string
	IsCorrect bool
}

// ErrorKind classifies a linguistic error.
type ErrorKind string

const (
	Ortografia  ErrorKind = "ortografia"
	Pontuacao   ErrorKind = "pontuacao"
	Acentuacao  ErrorKind = "acentuacao"
	Maiuscula   ErrorKind = "maiuscula"
	Espacamento ErrorKind = "espacamento"
)

// ErrorKinds lists every kind in report order.
var ErrorKinds = []ErrorKind{Ortografia, Pontuacao, Acentuacao, Maiuscula, Espacamento}

// Label returns the display name used on screen.
func (k ErrorKind) Label() string {
	switch k {
	case Ortografia:
		return "Ortografia"
	case Pontuacao:
		return "Pontuação"
	case Acentuacao:
		return "Acentuação"
	case Maiuscula:
		return "Maiúscula"
	case Espacamento:
		return "Espaçamento"
	}
	return string(k)
}

// TextError is one detected linguistic error.
type TextError struct {
	Kind       ErrorKind
	Position   int
	Error      string
	Suggestion string
	Context    string
}

// FinishReason records why an attempt ended.
type FinishReason string

const (
	FinishManual  FinishReason = "manual"
	FinishTimeout FinishReason = "timeout"
)

// Metrics are the speed/accuracy figures shown while typing and frozen on finish.
type Metrics struct {
	WPM      int
	Accuracy int
	Words    int
}

// TestAttempt is a finalized attempt. It is never modified after creation.
type TestAttempt struct {
	ID             string
	Mode           Mode
	Difficulty     Difficulty
	Reference      ReferenceText
	TypedText      string
	ElapsedSeconds int
	WPM            int
	Accuracy       int
	Errors         []TextError
	Reason         FinishReason
	StartedAt      time.Time
	EndedAt        time.Time
}

// UserData identifies the person taking the test.
type UserData struct {
	Name      string
	Email     string
	Matricula string
	// ExternalID is used when the person has no matricula (e.g. a CPF).
	ExternalID string
}

// Identifier returns the matricula, or the external id when there is none.
func (u UserData) Identifier() string {
	if u.Matricula != "" {
		return u.Matricula
	}
	return u.ExternalID
}

// IdentifierLabel names the field returned by Identifier.
func (u UserData) IdentifierLabel() string {
	if u.Matricula != "" {
		return "Matrícula"
	}
	return "CPF"
}

// Submission is what the result sink receives for every finished attempt.
type Submission struct {
	SessionID string
	User      UserData
	Attempt   TestAttempt
}

// NoticeLevel is the severity of a user-facing message.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarn
	NoticeError
)

// Notice is a non-blocking message for the user.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Aggregated rows for history reporting.

// AttemptAggregate summarizes a stored attempt for reporting.
type AttemptAggregate struct {
	AttemptID      string
	SessionID      string
	EndedAt        time.Time
	Mode           Mode
	Difficulty     Difficulty
	WPM            int
	Accuracy       int
	ElapsedSeconds int
	ErrorCount     int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Difficulty  string
	Since       *time.Time
	Last        int
	CurveWindow int
}
