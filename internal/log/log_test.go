package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/digita/internal/model"
)

func TestHelpersAreNoOpsBeforeInit(t *testing.T) {
	Close()
	Info("dropped")
	Errorf("dropped %d", 1)
	AttemptStart("s", model.Texto, model.Facil, 1)
}

func TestInitCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "digita.log")
	if err := Init(Options{Path: path, Level: "debug"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Close)

	Info("hello")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected message in log, got %q", data)
	}
}

func TestInitRejectsEmptyPath(t *testing.T) {
	if err := Init(Options{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	t.Cleanup(Close)

	Debugf("quiet %d", 1)
	Info("quiet")
	Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("expected warning in output, got %q", out)
	}
}

func TestAttemptFinishFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info")
	t.Cleanup(Close)

	AttemptFinish("sess-1", model.TestAttempt{
		ID:             "att-1",
		Mode:           model.Audio,
		Difficulty:     model.Medio,
		Reason:         model.FinishTimeout,
		WPM:            42,
		Accuracy:       95,
		ElapsedSeconds: 180,
		EndedAt:        time.Unix(0, 0),
	})

	out := buf.String()
	for _, want := range []string{"attempt_finish", "session=sess-1", "mode=audio", "difficulty=medio", "reason=timeout", "wpm=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
