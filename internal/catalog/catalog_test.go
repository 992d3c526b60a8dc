package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/digita/internal/model"
)

func TestBuiltinHasThreePerDifficulty(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range model.Difficulties {
		if got := len(c.Filter(d)); got != 3 {
			t.Fatalf("expected 3 texts for %s, got %d", d, got)
		}
	}
	if got := len(c.Filter("")); got != 9 {
		t.Fatalf("expected 9 texts in total, got %d", got)
	}
}

func TestRandomRespectsDifficulty(t *testing.T) {
	c, err := NewSeeded(1, Builtin())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		text, err := c.Random(model.Dificil)
		if err != nil {
			t.Fatal(err)
		}
		if text.Difficulty != model.Dificil {
			t.Fatalf("expected dificil text, got %s", text.Difficulty)
		}
	}
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	a, _ := NewSeeded(42, Builtin())
	b, _ := NewSeeded(42, Builtin())
	for i := 0; i < 10; i++ {
		x, _ := a.Random("")
		y, _ := b.Random("")
		if x.ID != y.ID {
			t.Fatalf("expected same pick for same seed, got %d and %d", x.ID, y.ID)
		}
	}
}

func TestRandomEmpty(t *testing.T) {
	c, _ := NewSeeded(1, nil)
	if _, err := c.Random(model.Facil); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestByID(t *testing.T) {
	c, _ := New()
	text, ok := c.ByID(5)
	if !ok || text.Difficulty != model.Medio || text.AudioCue != "/audio/medio-2.mp3" {
		t.Fatalf("unexpected text for id 5: %+v", text)
	}
	if _, ok := c.ByID(99); ok {
		t.Fatalf("expected id 99 to be missing")
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	if _, err := New(model.ReferenceText{ID: 1, Difficulty: model.Facil, Body: "x"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.toml")
	content := `
[[text]]
id = 10
difficulty = "facil"
body = """
Uma frase curta.
Outra frase.
"""

[[text]]
id = 11
difficulty = "dificil"
body = "Texto difícil."
audio = "/audio/extra.mp3"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	texts, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(texts))
	}
	if texts[0].Body != "Uma frase curta. Outra frase." {
		t.Fatalf("expected whitespace to be collapsed, got %q", texts[0].Body)
	}
	if texts[1].AudioCue != "/audio/extra.mp3" {
		t.Fatalf("unexpected audio cue %q", texts[1].AudioCue)
	}
	c, err := New(texts...)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Filter(model.Facil)) != 4 {
		t.Fatalf("expected extra text to join the catalog")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.toml")
	content := `
[[text]]
id = 10
difficulty = "impossivel"
body = "x"

[[text]]
id = 0
difficulty = "facil"
body = "y"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	texts, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil || texts != nil {
		t.Fatalf("expected no texts and no error, got %v, %v", texts, err)
	}
}
