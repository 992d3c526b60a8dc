// Package dictation reads a reference text aloud phrase by phrase.
package dictation

import (
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/digita/internal/clock"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultLang = "pt-BR"
	DefaultRate = 0.9
	DefaultGap  = 2 * time.Second
)

var phrasePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SplitPhrases splits text into sentence-like phrases, each keeping its
// terminator. Trailing text without a terminator is the last phrase.
func SplitPhrases(text string) []string {
	var phrases []string
	end := 0
	for _, loc := range phrasePattern.FindAllStringIndex(text, -1) {
		phrases = append(phrases, text[loc[0]:loc[1]])
		end = loc[1]
	}
	if rest := text[end:]; strings.TrimSpace(rest) != "" || len(phrases) == 0 {
		phrases = append(phrases, rest)
	}
	return phrases
}

// Speaker synthesizes speech. done is called once per Speak, on the caller's
// event loop, unless the utterance was cancelled first; a cancelled utterance
// may still report an error.
type Speaker interface {
	Speak(text, lang string, rate float64, done func(error))
	Cancel()
}

// State is a read-only view of the sequencer.
type State struct {
	Phrases  []string
	Index    int
	Speaking bool
}

// Progress returns the one-based number of the current phrase and the total.
func (s State) Progress() (int, int) {
	return min(s.Index+1, len(s.Phrases)), len(s.Phrases)
}

// Options configures a Sequencer.
type Options struct {
	Lang string
	Rate float64
	Gap  time.Duration
	// Active reports whether the attempt is running and not paused. It is read
	// when the inter-phrase gap elapses.
	Active func() bool
	// OnError receives speech backend failures.
	OnError func(error)
}

// Sequencer plays phrases one at a time with a pause between them.
// Every method must be called from the event loop that runs Clock callbacks.
type Sequencer struct {
	clock   clock.Clock
	speaker Speaker
	opts    Options

	phrases  []string
	index    int
	speaking bool

	// gen invalidates speech callbacks and gap timers of superseded playback.
	gen     uint64
	pending clock.Timer
}

// New returns a Sequencer with no phrases loaded.
func New(c clock.Clock, speaker Speaker, opts Options) *Sequencer {
	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Gap <= 0 {
		opts.Gap = DefaultGap
	}
	return &Sequencer{clock: c, speaker: speaker, opts: opts}
}

// Load cancels any playback and prepares the phrases of text.
func (s *Sequencer) Load(text string) {
	s.Cancel()
	s.phrases = SplitPhrases(text)
	s.index = 0
}

// Play speaks phrase index and chains to the next one after the gap.
// forceReset cancels any in-flight utterance first; natural chaining passes
// false so the upcoming utterance is not cut.
func (s *Sequencer) Play(index int, forceReset bool) {
	s.gen++
	gen := s.gen
	s.stopPending()
	if index >= len(s.phrases) {
		s.speaking = false
		return
	}
	if forceReset {
		s.speaker.Cancel()
	}
	s.speaking = true
	s.index = index
	s.speaker.Speak(s.phrases[index], s.opts.Lang, s.opts.Rate, func(err error) {
		if gen != s.gen {
			return
		}
		if err != nil {
			s.speaking = false
			if s.opts.OnError != nil {
				s.opts.OnError(err)
			}
			return
		}
		s.pending = s.clock.AfterFunc(s.opts.Gap, func() {
			s.pending = nil
			if gen != s.gen {
				return
			}
			if s.opts.Active != nil && !s.opts.Active() {
				return
			}
			s.Play(index+1, false)
		})
	})
}

// PlayAfter starts playback at index once delay has passed, if the attempt is
// still active then. Any later command supersedes it.
func (s *Sequencer) PlayAfter(delay time.Duration, index int) {
	s.gen++
	gen := s.gen
	s.stopPending()
	s.pending = s.clock.AfterFunc(delay, func() {
		s.pending = nil
		if gen != s.gen {
			return
		}
		if s.opts.Active != nil && !s.opts.Active() {
			return
		}
		s.Play(index, true)
	})
}

// Cancel stops the current utterance and any scheduled continuation.
// The phrase index is kept.
func (s *Sequencer) Cancel() {
	s.gen++
	s.stopPending()
	s.speaker.Cancel()
	s.speaking = false
}

// Resume replays the current phrase from its start.
func (s *Sequencer) Resume() {
	s.Play(s.index, true)
}

// Restart replays the text from the first phrase.
func (s *Sequencer) Restart() {
	s.Cancel()
	s.Play(0, true)
}

// Toggle cancels playback when speaking and resumes it otherwise. It reports
// whether the sequencer is speaking afterwards.
func (s *Sequencer) Toggle() bool {
	if s.speaking {
		s.Cancel()
		return false
	}
	s.Resume()
	return s.speaking
}

// Speaking reports whether playback is in progress, including the gap.
func (s *Sequencer) Speaking() bool {
	return s.speaking
}

// State returns a copy of the sequencer state.
func (s *Sequencer) State() State {
	phrases := make([]string, len(s.phrases))
	copy(phrases, s.phrases)
	return State{Phrases: phrases, Index: s.index, Speaking: s.speaking}
}

func (s *Sequencer) stopPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
