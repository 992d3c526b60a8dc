package dictation

import "errors"

// ErrCanceled is reported for an utterance interrupted by Cancel.
var ErrCanceled = errors.New("speech canceled")

// Utterance is one Speak call recorded by FakeSpeaker.
type Utterance struct {
	Text string
	Lang string
	Rate float64
}

// FakeSpeaker records utterances and completes them on demand.
type FakeSpeaker struct {
	Spoken  []Utterance
	Cancels int

	done func(error)
}

// Speak implements Speaker.
func (f *FakeSpeaker) Speak(text, lang string, rate float64, done func(error)) {
	f.Spoken = append(f.Spoken, Utterance{Text: text, Lang: lang, Rate: rate})
	f.done = done
}

// Cancel implements Speaker. The interrupted utterance reports ErrCanceled.
func (f *FakeSpeaker) Cancel() {
	f.Cancels++
	if done := f.done; done != nil {
		f.done = nil
		done(ErrCanceled)
	}
}

// Busy reports whether an utterance is in flight.
func (f *FakeSpeaker) Busy() bool {
	return f.done != nil
}

// Finish completes the in-flight utterance with err. It reports false when
// nothing is being spoken.
func (f *FakeSpeaker) Finish(err error) bool {
	done := f.done
	if done == nil {
		return false
	}
	f.done = nil
	done(err)
	return true
}

// Last returns the text of the most recent utterance.
func (f *FakeSpeaker) Last() string {
	if len(f.Spoken) == 0 {
		return ""
	}
	return f.Spoken[len(f.Spoken)-1].Text
}
