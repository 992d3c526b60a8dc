package dictation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newShellSpeaker(script string) *ExecSpeaker {
	return &ExecSpeaker{
		Name: "sh",
		Args: []string{"-c", script},
		Post: func(f func()) { f() },
	}
}

func waitResult(t *testing.T, results chan error) error {
	t.Helper()
	select {
	case err := <-results:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("speech command did not complete")
		return nil
	}
}

func TestExecSpeakerSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	results := make(chan error, 1)
	sp := newShellSpeaker("exit 0")
	sp.Speak("Olá.", "pt-BR", 0.9, func(err error) { results <- err })
	assert.NoError(t, waitResult(t, results))
	sp.Close()
}

func TestExecSpeakerFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	results := make(chan error, 1)
	sp := newShellSpeaker("exit 3")
	sp.Speak("Olá.", "pt-BR", 0.9, func(err error) { results <- err })
	assert.Error(t, waitResult(t, results))
	sp.Close()
}

func TestExecSpeakerCancelKillsProcess(t *testing.T) {
	defer goleak.VerifyNone(t)

	results := make(chan error, 1)
	sp := newShellSpeaker("sleep 30")
	sp.Speak("Olá.", "pt-BR", 0.9, func(err error) { results <- err })
	sp.Cancel()
	assert.Error(t, waitResult(t, results))
	sp.Close()
}

func TestParseCommandPlaceholders(t *testing.T) {
	sp, err := ParseCommand(DefaultCommand, nil)
	require.NoError(t, err)
	assert.Equal(t, "espeak-ng", sp.Name)
	assert.Equal(t, []string{"-v", "pt-br", "-s", "158", "Bom dia."}, sp.args("Bom dia.", "pt-BR", 0.9))

	_, err = ParseCommand("   ", nil)
	assert.Error(t, err)
}
