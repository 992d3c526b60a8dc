package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digita/internal/model"
)

func kinds(errs []model.TextError) []model.ErrorKind {
	out := make([]model.ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestDetectErrors_AccentAndMissingPunctuation(t *testing.T) {
	errs := DetectErrors("Olá, mundo.", "Ola mundo")

	require.Len(t, errs, 3)
	assert.Equal(t, []model.ErrorKind{model.Acentuacao, model.Pontuacao, model.Pontuacao}, kinds(errs))

	assert.Equal(t, "Ola", errs[0].Error)
	assert.Equal(t, "Olá", errs[0].Suggestion)
	assert.Equal(t, 0, errs[0].Position)

	assert.Equal(t, "falta pontuação", errs[1].Error)
	assert.Equal(t, ",", errs[1].Suggestion)
	assert.Equal(t, 3, errs[1].Position)

	assert.Equal(t, ".", errs[2].Suggestion)
	assert.Equal(t, 9, errs[2].Position)
}

func TestDetectErrors_CapitalizationAndAccent(t *testing.T) {
	errs := DetectErrors("A casa é grande.", "a casa e grande.")

	require.NotEmpty(t, errs)
	assert.Equal(t, model.Maiuscula, errs[0].Kind)
	assert.Equal(t, 0, errs[0].Position)
	assert.Equal(t, "A", errs[0].Suggestion)

	var accent *model.TextError
	for i := range errs {
		if errs[i].Kind == model.Acentuacao {
			accent = &errs[i]
		}
	}
	require.NotNil(t, accent)
	assert.Equal(t, "e", accent.Error)
	assert.Equal(t, "é", accent.Suggestion)
	assert.Equal(t, 7, accent.Position)
}

func TestDetectErrors_CapitalizationOnlyAtSentenceStart(t *testing.T) {
	errs := DetectErrors("Fim. Outra Frase", "Fim. outra frase")

	require.Len(t, errs, 3)
	assert.Equal(t, model.Maiuscula, errs[0].Kind)
	assert.Equal(t, "Outra", errs[0].Suggestion)
	// "frase" is mid-sentence: only a spelling difference, no capitalization error.
	assert.Equal(t, model.Ortografia, errs[1].Kind)
	assert.Equal(t, model.Ortografia, errs[2].Kind)
	assert.Equal(t, "Frase", errs[2].Suggestion)
}

func TestDetectErrors_PunctuationCases(t *testing.T) {
	tests := []struct {
		name       string
		ref, typed string
		wantErr    string
		wantSugg   string
		wantCtx    string
	}{
		{"unnecessary", "casa", "casa.", ".", "remover pontuação", "Pontuação desnecessária"},
		{"wrong", "casa.", "casa!", "!", ".", "Pontuação incorreta"},
		{"missing", "casa;", "casa", "falta pontuação", ";", `Falta pontuação: ";"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := DetectErrors(tt.ref, tt.typed)
			require.Len(t, errs, 1)
			assert.Equal(t, model.Pontuacao, errs[0].Kind)
			assert.Equal(t, tt.wantErr, errs[0].Error)
			assert.Equal(t, tt.wantSugg, errs[0].Suggestion)
			assert.Equal(t, tt.wantCtx, errs[0].Context)
		})
	}
}

func TestDetectErrors_OrthographySkipsEmptyTypedWord(t *testing.T) {
	errs := DetectErrors("uma casa bonita", "uma casa")
	assert.Empty(t, errs)

	errs = DetectErrors("uma casa", "uma cosa")
	require.Len(t, errs, 1)
	assert.Equal(t, model.Ortografia, errs[0].Kind)
	assert.Equal(t, "cosa", errs[0].Error)
	assert.Equal(t, "casa", errs[0].Suggestion)
	assert.Equal(t, 4, errs[0].Position)
}

func TestDetectErrors_MissingWordStillReportsPunctuation(t *testing.T) {
	errs := DetectErrors("Sim. Claro.", "Sim.")
	require.Len(t, errs, 1)
	assert.Equal(t, model.Pontuacao, errs[0].Kind)
	assert.Equal(t, ".", errs[0].Suggestion)
}

func TestDetectErrors_DoubleSpacesUseFirstPosition(t *testing.T) {
	errs := DetectErrors("a b c d", "a  b c   d")

	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, model.Espacamento, e.Kind)
		assert.Equal(t, 1, e.Position)
		assert.Equal(t, "espaços duplos", e.Error)
	}
}

func TestDetectErrors_IdenticalTextHasNoErrors(t *testing.T) {
	ref := "O Brasil é um país de dimensões continentais. A tecnologia transformou a forma como trabalhamos."
	assert.Empty(t, DetectErrors(ref, ref))
}

func TestDetectErrors_Deterministic(t *testing.T) {
	ref := "A comunicação é essencial no ambiente de trabalho. Escrever bem demonstra profissionalismo."
	typed := "a comunicacao e essencial  no ambiente de trabaho escrever bem demonstra profissionalismo!"
	first := DetectErrors(ref, typed)
	second := DetectErrors(ref, typed)
	assert.Equal(t, first, second)
}

func TestDetectErrors_EmptyInputs(t *testing.T) {
	assert.Empty(t, DetectErrors("", ""))

	errs := DetectErrors("Olá.", "")
	require.Len(t, errs, 1)
	assert.Equal(t, model.Pontuacao, errs[0].Kind)
}

func TestSummaryHasEveryKind(t *testing.T) {
	summary := Summary([]model.TextError{
		{Kind: model.Ortografia},
		{Kind: model.Ortografia},
		{Kind: model.Espacamento},
	})
	require.Len(t, summary, len(model.ErrorKinds))
	assert.Equal(t, 2, summary[model.Ortografia])
	assert.Equal(t, 1, summary[model.Espacamento])
	assert.Equal(t, 0, summary[model.Acentuacao])
	assert.Equal(t, 0, summary[model.Maiuscula])
	assert.Equal(t, 0, summary[model.Pontuacao])
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "acao", stripAccents("ação"))
	assert.Equal(t, "Ola", stripAccents("Olá"))
	assert.Equal(t, "linguisticas", stripAccents("linguísticas"))
}
