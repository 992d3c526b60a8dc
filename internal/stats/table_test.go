package stats

import (
	"bytes"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	tbl := newTable(column{title: "Kind"}, column{title: "Count", right: true})
	tbl.add("Acentuação", "12")
	tbl.add("Espaçamento", "3")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Kind        Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Acentuação     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Espaçamento     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableWithoutHeaders(t *testing.T) {
	tbl := newTable(column{}, column{}, column{right: true})
	tbl.add("WPM", "..::", "41.0")
	tbl.add("Accuracy", ":", "9.5")

	lines := tbl.lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "WPM      ..:: 41.0" {
		t.Fatalf("unexpected line: %q", lines[0])
	}
	if lines[1] != "Accuracy :     9.5" {
		t.Fatalf("unexpected line: %q", lines[1])
	}
}

func TestTableTrimsTrailingPaddingAndBlankCells(t *testing.T) {
	tbl := newTable(column{title: "Kind"}, column{title: "Context"})
	tbl.add("Pontuação", "Falta pontuação")
	tbl.add("Ortografia")

	var buf bytes.Buffer
	if err := tbl.write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Kind       Context\nPontuação  Falta pontuação\nOrtografia\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableWidthUsesDisplayWidth(t *testing.T) {
	tbl := newTable(column{title: "字"}, column{title: "n", right: true})
	tbl.add("ab", "1")
	lines := tbl.lines()
	if lines[0] != "字 n" || lines[1] != "ab 1" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
