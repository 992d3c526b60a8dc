// Package classify detects Portuguese spelling, accent, punctuation,
// capitalization and spacing errors in typed text.
//
// Words are aligned by position, not by sequence alignment: when the typed text
// drops or adds a word early, every later index is compared against the wrong
// reference word. Positions are rune offsets advanced by word length plus one
// separator, so they are approximate once word counts diverge.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/digita/internal/model"
)

const punctuation = ".,!?;:"

var wordSeparator = regexp.MustCompile(`[\s\p{Z}]+`)

// wordPair is the input every check sees for one word index.
type wordPair struct {
	index    int
	ref      string
	typed    string
	prevRef  string
	typedPos int
}

// check inspects one word pair and reports at most one error.
type check struct {
	name string
	run  func(p wordPair) (model.TextError, bool)
}

// checks run in this order for every index.
var checks = []check{
	{name: "capitalization", run: checkCapitalization},
	{name: "accentuation", run: checkAccentuation},
	{name: "punctuation", run: checkPunctuation},
	{name: "orthography", run: checkOrthography},
}

// DetectErrors compares reference and typed text word by word and returns the
// errors in emission order: per index, capitalization, accentuation,
// punctuation and orthography; then one spacing error per run of two or more
// consecutive spaces.
func DetectErrors(reference, typed string) []model.TextError {
	refWords := splitWords(reference)
	typedWords := splitWords(typed)

	var errs []model.TextError
	typedPos := 0
	n := max(len(refWords), len(typedWords))
	for i := 0; i < n; i++ {
		p := wordPair{
			index:    i,
			ref:      wordAt(refWords, i),
			typed:    wordAt(typedWords, i),
			prevRef:  wordAt(refWords, i-1),
			typedPos: typedPos,
		}
		for _, c := range checks {
			if e, ok := c.run(p); ok {
				errs = append(errs, e)
			}
		}
		typedPos += runeLen(p.typed) + 1
	}
	return append(errs, spacingErrors(typed)...)
}

// Summary counts errors per kind. Every kind is present.
func Summary(errs []model.TextError) map[model.ErrorKind]int {
	summary := make(map[model.ErrorKind]int, len(model.ErrorKinds))
	for _, k := range model.ErrorKinds {
		summary[k] = 0
	}
	for _, e := range errs {
		summary[e.Kind]++
	}
	return summary
}

func checkCapitalization(p wordPair) (model.TextError, bool) {
	if p.index != 0 && !endsSentence(p.prevRef) {
		return model.TextError{}, false
	}
	if p.ref == "" || p.typed == "" {
		return model.TextError{}, false
	}
	refFirst, _ := utf8.DecodeRuneInString(p.ref)
	typedFirst, size := utf8.DecodeRuneInString(p.typed)
	if !unicode.IsUpper(refFirst) || unicode.ToUpper(typedFirst) == typedFirst {
		return model.TextError{}, false
	}
	return model.TextError{
		Kind:       model.Maiuscula,
		Position:   p.typedPos,
		Error:      p.typed,
		Suggestion: string(unicode.ToUpper(typedFirst)) + p.typed[size:],
		Context:    "Início de frase deve começar com letra maiúscula",
	}, true
}

func checkAccentuation(p wordPair) (model.TextError, bool) {
	ref := trimPunct(p.ref)
	typed := trimPunct(p.typed)
	if ref == typed || stripAccents(ref) != stripAccents(typed) {
		return model.TextError{}, false
	}
	return model.TextError{
		Kind:       model.Acentuacao,
		Position:   p.typedPos,
		Error:      typed,
		Suggestion: ref,
		Context:    "Palavra com acentuação incorreta",
	}, true
}

func checkPunctuation(p wordPair) (model.TextError, bool) {
	refMark, refHas := trailingPunct(p.ref)
	typedMark, typedHas := trailingPunct(p.typed)
	end := p.typedPos + runeLen(p.typed)
	switch {
	case refHas && !typedHas:
		return model.TextError{
			Kind:       model.Pontuacao,
			Position:   end,
			Error:      "falta pontuação",
			Suggestion: refMark,
			Context:    fmt.Sprintf("Falta pontuação: %q", refMark),
		}, true
	case !refHas && typedHas:
		return model.TextError{
			Kind:       model.Pontuacao,
			Position:   end - 1,
			Error:      typedMark,
			Suggestion: "remover pontuação",
			Context:    "Pontuação desnecessária",
		}, true
	case refHas && typedHas && refMark != typedMark:
		return model.TextError{
			Kind:       model.Pontuacao,
			Position:   end - 1,
			Error:      typedMark,
			Suggestion: refMark,
			Context:    "Pontuação incorreta",
		}, true
	}
	return model.TextError{}, false
}

func checkOrthography(p wordPair) (model.TextError, bool) {
	ref := trimPunct(p.ref)
	typed := trimPunct(p.typed)
	if typed == "" || ref == typed || stripAccents(ref) == stripAccents(typed) {
		return model.TextError{}, false
	}
	return model.TextError{
		Kind:       model.Ortografia,
		Position:   p.typedPos,
		Error:      typed,
		Suggestion: ref,
		Context:    "Palavra escrita incorretamente",
	}, true
}

// spacingErrors reports one error per run of consecutive spaces. Every error
// carries the position of the first double space in the text.
func spacingErrors(typed string) []model.TextError {
	first := strings.Index(typed, "  ")
	if first < 0 {
		return nil
	}
	pos := utf8.RuneCountInString(typed[:first])
	runs := 0
	inRun := 0
	for _, r := range typed {
		if r == ' ' {
			inRun++
			if inRun == 2 {
				runs++
			}
			continue
		}
		inRun = 0
	}
	errs := make([]model.TextError, 0, runs)
	for i := 0; i < runs; i++ {
		errs = append(errs, model.TextError{
			Kind:       model.Espacamento,
			Position:   pos,
			Error:      "espaços duplos",
			Suggestion: "usar apenas um espaço",
			Context:    "Espaçamento incorreto",
		})
	}
	return errs
}

// splitWords splits on whitespace runs. Leading or trailing whitespace yields
// an empty first or last word, and empty text yields one empty word.
func splitWords(s string) []string {
	return wordSeparator.Split(s, -1)
}

func wordAt(words []string, i int) string {
	if i < 0 || i >= len(words) {
		return ""
	}
	return words[i]
}

func endsSentence(word string) bool {
	if word == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(word)
	return r == '.' || r == '!' || r == '?'
}

func trailingPunct(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	r, _ := utf8.DecodeLastRuneInString(word)
	if !strings.ContainsRune(punctuation, r) {
		return "", false
	}
	return string(r), true
}

func trimPunct(word string) string {
	if mark, ok := trailingPunct(word); ok {
		return strings.TrimSuffix(word, mark)
	}
	return word
}

func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// stripAccents decomposes to NFD and drops combining diacritical marks.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isCombiningMark)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
