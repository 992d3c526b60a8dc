package dictation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digita/internal/clock"
)

const threePhrases = "O Brasil é grande. Tem muitas regiões! Qual a capital?"

type harness struct {
	clock   *clock.Fake
	speaker *FakeSpeaker
	seq     *Sequencer
	active  bool
	errs    []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: clock.NewFake(time.Unix(0, 0)), speaker: &FakeSpeaker{}, active: true}
	h.seq = New(h.clock, h.speaker, Options{
		Active:  func() bool { return h.active },
		OnError: func(err error) { h.errs = append(h.errs, err) },
	})
	h.seq.Load(threePhrases)
	return h
}

func TestSplitPhrases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"terminators kept", "Olá. Tudo bem? Sim!", []string{"Olá.", " Tudo bem?", " Sim!"}},
		{"no terminator", "sem pontuação final", []string{"sem pontuação final"}},
		{"ellipsis stays together", "Espere... ok.", []string{"Espere...", " ok."}},
		{"trailing fragment kept", "Bom dia. Tudo bem com você", []string{"Bom dia.", " Tudo bem com você"}},
		{"trailing whitespace ignored", "Uma frase.  ", []string{"Uma frase."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPhrases(tt.text))
		})
	}
}

func TestPlayChainsAfterGap(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)

	require.Len(t, h.speaker.Spoken, 1)
	assert.Equal(t, "O Brasil é grande.", h.speaker.Last())
	assert.Equal(t, DefaultLang, h.speaker.Spoken[0].Lang)
	assert.InDelta(t, DefaultRate, h.speaker.Spoken[0].Rate, 1e-9)
	assert.True(t, h.seq.Speaking())

	require.True(t, h.speaker.Finish(nil))
	h.clock.Advance(DefaultGap - time.Millisecond)
	assert.Len(t, h.speaker.Spoken, 1, "next phrase must wait for the full gap")
	assert.True(t, h.seq.Speaking(), "still speaking during the gap")

	h.clock.Advance(time.Millisecond)
	require.Len(t, h.speaker.Spoken, 2)
	assert.Equal(t, " Tem muitas regiões!", h.speaker.Last())
	assert.Equal(t, 1, h.speaker.Cancels, "natural chaining must not cancel")
}

func TestRunsToEndAndStops(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	for i := 0; i < 3; i++ {
		require.True(t, h.speaker.Finish(nil))
		h.clock.Advance(DefaultGap)
	}
	assert.Len(t, h.speaker.Spoken, 3)
	assert.False(t, h.seq.Speaking())
	n, m := h.seq.State().Progress()
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, m)
}

func TestGapReadsLiveFlags(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	require.True(t, h.speaker.Finish(nil))

	// Paused after the phrase ended but before the gap elapsed.
	h.active = false
	h.clock.Advance(DefaultGap)
	assert.Len(t, h.speaker.Spoken, 1)
}

func TestPauseMidUtteranceResumesSamePhrase(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	require.True(t, h.speaker.Finish(nil))
	h.clock.Advance(DefaultGap)
	require.Equal(t, " Tem muitas regiões!", h.speaker.Last())

	h.active = false
	h.seq.Cancel()
	assert.False(t, h.seq.Speaking())
	assert.False(t, h.speaker.Busy())
	assert.Empty(t, h.errs, "cancellation is not a backend error")

	h.clock.Advance(10 * time.Second)
	h.active = true
	h.seq.Resume()
	assert.Equal(t, " Tem muitas regiões!", h.speaker.Last())
	assert.Equal(t, 1, h.seq.State().Index)
}

func TestCancelDuringGapDropsContinuation(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	require.True(t, h.speaker.Finish(nil))
	h.seq.Cancel()
	assert.Equal(t, 0, h.clock.Pending())
	h.clock.Advance(DefaultGap)
	assert.Len(t, h.speaker.Spoken, 1)
}

func TestSpeechErrorStopsSilently(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	boom := errors.New("no audio device")
	require.True(t, h.speaker.Finish(boom))

	assert.False(t, h.seq.Speaking())
	require.Len(t, h.errs, 1)
	assert.ErrorIs(t, h.errs[0], boom)
	h.clock.Advance(DefaultGap)
	assert.Len(t, h.speaker.Spoken, 1)
}

func TestPlayAfterLeadIn(t *testing.T) {
	h := newHarness(t)
	h.seq.PlayAfter(time.Second, 0)
	h.clock.Advance(999 * time.Millisecond)
	assert.Empty(t, h.speaker.Spoken)
	h.clock.Advance(time.Millisecond)
	assert.Len(t, h.speaker.Spoken, 1)
}

func TestPlayAfterSupersededByCancel(t *testing.T) {
	h := newHarness(t)
	h.seq.PlayAfter(time.Second, 0)
	h.seq.Cancel()
	h.clock.Advance(2 * time.Second)
	assert.Empty(t, h.speaker.Spoken)
}

func TestPlayAfterSkippedWhenInactive(t *testing.T) {
	h := newHarness(t)
	h.seq.PlayAfter(time.Second, 0)
	h.active = false
	h.clock.Advance(time.Second)
	assert.Empty(t, h.speaker.Spoken)
}

func TestToggleAndRestart(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(0, true)
	require.True(t, h.speaker.Finish(nil))
	h.clock.Advance(DefaultGap)

	assert.False(t, h.seq.Toggle())
	assert.True(t, h.seq.Toggle())
	assert.Equal(t, " Tem muitas regiões!", h.speaker.Last())

	h.seq.Restart()
	assert.Equal(t, "O Brasil é grande.", h.speaker.Last())
	assert.Equal(t, 0, h.seq.State().Index)
	n, m := h.seq.State().Progress()
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, m)
}

func TestLoadResetsIndex(t *testing.T) {
	h := newHarness(t)
	h.seq.Play(2, true)
	h.seq.Load("Outra frase.")
	st := h.seq.State()
	assert.Equal(t, []string{"Outra frase."}, st.Phrases)
	assert.Equal(t, 0, st.Index)
	assert.False(t, st.Speaking)
}
