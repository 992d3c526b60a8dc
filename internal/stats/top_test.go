package stats

import (
	"testing"

	"github.com/verte-zerg/digita/internal/model"
)

func TestTopKinds(t *testing.T) {
	summary := map[model.ErrorKind]int{
		model.Ortografia: 1,
		model.Acentuacao: 4,
		model.Pontuacao:  2,
	}
	top := TopKinds(summary, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 kinds, got %d", len(top))
	}
	if top[0] != model.Acentuacao || top[1] != model.Pontuacao {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestTopKindsKeepsReportOrderOnTies(t *testing.T) {
	top := TopKinds(map[model.ErrorKind]int{}, 10)
	if len(top) != len(model.ErrorKinds) {
		t.Fatalf("expected %d kinds, got %d", len(model.ErrorKinds), len(top))
	}
	for i, k := range model.ErrorKinds {
		if top[i] != k {
			t.Fatalf("expected %s at %d, got %s", k, i, top[i])
		}
	}
}
