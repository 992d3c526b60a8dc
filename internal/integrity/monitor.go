// Package integrity turns focus, visibility, key and paste events raised
// during an attempt into warnings or violations. These are deterrents for
// honest users, not a security boundary.
package integrity

import (
	"strings"
	"time"

	"github.com/verte-zerg/digita/internal/model"
)

// DefaultResetDelay is how long a violation stays on screen before the
// session resets.
const DefaultResetDelay = 2 * time.Second

// Action tells the caller what to do with an event.
type Action int

const (
	// Ignore lets the event through with no effect.
	Ignore Action = iota
	// Warn lets the event through and shows a warning.
	Warn
	// Block suppresses the event and shows a warning.
	Block
	// Violation aborts the attempt and resets the session after the delay.
	Violation
)

func (a Action) String() string {
	switch a {
	case Warn:
		return "warn"
	case Block:
		return "block"
	case Violation:
		return "violation"
	}
	return "ignore"
}

// Status is the attempt state an event is judged against.
type Status struct {
	Testing bool
	Running bool
}

// Verdict is the outcome of one event.
type Verdict struct {
	Action Action
	Event  string
	Notice model.Notice
}

// Key is a key press with its modifiers.
type Key struct {
	Name  string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// ParseKey parses names such as "ctrl+shift+s" or "printscreen".
func ParseKey(s string) Key {
	parts := strings.Split(strings.ToLower(s), "+")
	var k Key
	for i, p := range parts {
		if i == len(parts)-1 {
			k.Name = p
			break
		}
		switch p {
		case "ctrl":
			k.Ctrl = true
		case "shift":
			k.Shift = true
		case "alt":
			k.Alt = true
		case "meta", "cmd", "super":
			k.Meta = true
		}
	}
	return k
}

// IsCaptureCombo reports whether k is a common screen capture shortcut.
func IsCaptureCombo(k Key) bool {
	name := strings.ToLower(k.Name)
	switch {
	case name == "printscreen" || name == "print":
		return true
	case k.Ctrl && name == "s":
		// Terminals deliver ctrl+shift+s as ctrl+s.
		return true
	case k.Meta && k.Shift && (name == "3" || name == "4"):
		return true
	}
	return false
}

// Monitor judges integrity events.
type Monitor struct {
	ResetDelay time.Duration
}

// New returns a Monitor with the default reset delay.
func New() Monitor {
	return Monitor{ResetDelay: DefaultResetDelay}
}

// Delay returns the grace period before a violation resets the session.
func (m Monitor) Delay() time.Duration {
	if m.ResetDelay <= 0 {
		return DefaultResetDelay
	}
	return m.ResetDelay
}

// Visibility judges the terminal being hidden or suspended.
func (m Monitor) Visibility(hidden bool, st Status) Verdict {
	if !hidden || !st.Testing || !st.Running {
		return Verdict{Event: "visibility"}
	}
	return Verdict{
		Action: Violation,
		Event:  "visibility",
		Notice: model.Notice{Level: model.NoticeError, Message: "Você saiu da página! O teste será reiniciado."},
	}
}

// Blur judges the terminal losing focus.
func (m Monitor) Blur(st Status) Verdict {
	if !st.Testing || !st.Running {
		return Verdict{Event: "blur"}
	}
	return Verdict{
		Action: Warn,
		Event:  "blur",
		Notice: model.Notice{Level: model.NoticeWarn, Message: "Atenção! Mantenha o foco no teste."},
	}
}

// Key judges a key press. Capture shortcuts are blocked for the whole testing
// phase, paused or not.
func (m Monitor) Key(k Key, st Status) Verdict {
	if !st.Testing || !IsCaptureCombo(k) {
		return Verdict{Event: "key"}
	}
	return Verdict{
		Action: Block,
		Event:  "key",
		Notice: model.Notice{Level: model.NoticeError, Message: "Captura de tela não é permitida durante o teste!"},
	}
}

// Paste judges pasted text.
func (m Monitor) Paste(st Status) Verdict {
	if !st.Testing {
		return Verdict{Event: "paste"}
	}
	return Verdict{
		Action: Block,
		Event:  "paste",
		Notice: model.Notice{Level: model.NoticeError, Message: "Copiar e colar não é permitido neste teste!"},
	}
}
