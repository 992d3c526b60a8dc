package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/digita/internal/compare"
)

func styled(ref, typed string) []styledRune {
	return buildStyledRunes(compare.Compare(ref, typed), len([]rune(typed)))
}

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := styled("ab", "a")
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := styled("a", "a")
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := styled("ab", "ax")
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style showing the reference rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := styled("one two", "o")
	if runes[1].s != currentWordStyle.Underline(true).Render("n") {
		t.Fatalf("expected cursor on current word")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := styled("a b", "ax")
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render(string(wrongSpace)) {
		t.Fatalf("expected red dot for wrong space")
	}
	if !runes[1].isSpace {
		t.Fatalf("wrong space should still break lines")
	}
}

func TestBuildStyledRunesOverflow(t *testing.T) {
	runes := styled("ab", "abcd")
	if len(runes) != 4 {
		t.Fatalf("expected 4 runes, got %d", len(runes))
	}
	if runes[3].s != incorrectStyle.Render("d") {
		t.Fatalf("expected overflow rune in error style")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	out := wrapStyledRunes(typedRunes("uma casa bonita"), 9)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[1], typedStyle.Render("b")) {
		t.Fatalf("expected second line to start with the wrapped word, got %q", lines[1])
	}
}

func TestWrapStyledRunesSplitsLongWord(t *testing.T) {
	runes := []styledRune{{s: "a", width: 1}, {s: "b", width: 1}, {s: "c", width: 1}}
	if got := wrapStyledRunes(runes, 2); got != "ab\nc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
