package dictation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultCommand is the speech command line used when none is configured.
const DefaultCommand = "espeak-ng -v {lang} -s {wpm}"

// baseWPM is the speaking speed that corresponds to rate 1.0.
const baseWPM = 175

// ExecSpeaker speaks by running an external text-to-speech command, with the
// phrase appended as the last argument. Completion is handed to Post so done
// runs on the caller's event loop.
type ExecSpeaker struct {
	Name string
	// Args may contain {lang} and {wpm} placeholders.
	Args []string
	Post func(func())

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ParseCommand builds an ExecSpeaker from a command line such as DefaultCommand.
func ParseCommand(line string, post func(func())) (*ExecSpeaker, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("speech command is empty")
	}
	return &ExecSpeaker{Name: fields[0], Args: fields[1:], Post: post}, nil
}

// Speak implements Speaker. It cancels any utterance still running.
func (e *ExecSpeaker) Speak(text, lang string, rate float64, done func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, e.Name, e.args(text, lang, rate)...)

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		err := cmd.Run()
		if err != nil {
			err = fmt.Errorf("speech command %s: %w", e.Name, err)
		}
		e.post(func() { done(err) })
	}()
}

// Cancel implements Speaker.
func (e *ExecSpeaker) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Close cancels the current utterance and waits for its process to exit.
func (e *ExecSpeaker) Close() {
	e.Cancel()
	e.wg.Wait()
}

func (e *ExecSpeaker) args(text, lang string, rate float64) []string {
	wpm := strconv.Itoa(int(baseWPM*rate + 0.5))
	replacer := strings.NewReplacer("{lang}", strings.ToLower(lang), "{wpm}", wpm)
	args := make([]string, 0, len(e.Args)+1)
	for _, a := range e.Args {
		args = append(args, replacer.Replace(a))
	}
	return append(args, text)
}

func (e *ExecSpeaker) post(f func()) {
	if e.Post == nil {
		f()
		return
	}
	e.Post(f)
}
