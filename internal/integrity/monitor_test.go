package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	running = Status{Testing: true, Running: true}
	paused  = Status{Testing: true, Running: false}
	idle    = Status{}
)

func TestVisibility(t *testing.T) {
	m := New()
	assert.Equal(t, Violation, m.Visibility(true, running).Action)
	assert.Equal(t, Ignore, m.Visibility(false, running).Action)
	assert.Equal(t, Ignore, m.Visibility(true, paused).Action)
	assert.Equal(t, Ignore, m.Visibility(true, idle).Action)
}

func TestBlurOnlyWarns(t *testing.T) {
	m := New()
	v := m.Blur(running)
	assert.Equal(t, Warn, v.Action)
	assert.NotEmpty(t, v.Notice.Message)
	assert.Equal(t, Ignore, m.Blur(paused).Action)
}

func TestCaptureKeysBlockedWhileTesting(t *testing.T) {
	m := New()
	for _, name := range []string{"printscreen", "ctrl+shift+s", "ctrl+s", "meta+shift+3", "cmd+shift+4"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Block, m.Key(ParseKey(name), running).Action)
			assert.Equal(t, Block, m.Key(ParseKey(name), paused).Action)
			assert.Equal(t, Ignore, m.Key(ParseKey(name), idle).Action)
		})
	}
	for _, name := range []string{"a", "s", "shift+s", "ctrl+a", "meta+3", "alt+shift+4"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Ignore, m.Key(ParseKey(name), running).Action)
		})
	}
}

func TestPasteBlockedWhileTesting(t *testing.T) {
	m := New()
	assert.Equal(t, Block, m.Paste(running).Action)
	assert.Equal(t, Block, m.Paste(paused).Action)
	assert.Equal(t, Ignore, m.Paste(idle).Action)
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, Key{Name: "s", Ctrl: true, Shift: true}, ParseKey("ctrl+shift+S"))
	assert.Equal(t, Key{Name: "x"}, ParseKey("x"))
}

func TestDelayDefault(t *testing.T) {
	assert.Equal(t, DefaultResetDelay, Monitor{}.Delay())
}
