// Package catalog provides the reference texts typed during attempts.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/digita/internal/model"
)

// ErrNoText is returned when no text matches a difficulty.
var ErrNoText = errors.New("no reference text available")

// Catalog picks reference texts uniformly at random.
type Catalog struct {
	texts []model.ReferenceText
	rnd   *rand.Rand
}

// New returns a catalog of the built-in texts plus extra, seeded with the current time.
func New(extra ...model.ReferenceText) (*Catalog, error) {
	return NewSeeded(time.Now().UnixNano(), append(Builtin(), extra...))
}

// NewSeeded returns a catalog over texts with a fixed seed.
func NewSeeded(seed int64, texts []model.ReferenceText) (*Catalog, error) {
	seen := make(map[int]struct{}, len(texts))
	for _, t := range texts {
		if _, ok := seen[t.ID]; ok {
			return nil, fmt.Errorf("duplicate text id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	out := make([]model.ReferenceText, len(texts))
	copy(out, texts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &Catalog{texts: out, rnd: rand.New(rand.NewSource(seed))}, nil
}

// Random returns a text of the given difficulty, or of any difficulty when d is empty.
func (c *Catalog) Random(d model.Difficulty) (model.ReferenceText, error) {
	candidates := c.Filter(d)
	if len(candidates) == 0 {
		return model.ReferenceText{}, fmt.Errorf("%w for difficulty %q", ErrNoText, d)
	}
	return candidates[c.rnd.Intn(len(candidates))], nil
}

// Filter returns the texts of a difficulty in id order. Empty d returns all.
func (c *Catalog) Filter(d model.Difficulty) []model.ReferenceText {
	var out []model.ReferenceText
	for _, t := range c.texts {
		if d == "" || t.Difficulty == d {
			out = append(out, t)
		}
	}
	return out
}

// ByID returns the text with the given id.
func (c *Catalog) ByID(id int) (model.ReferenceText, bool) {
	for _, t := range c.texts {
		if t.ID == id {
			return t, true
		}
	}
	return model.ReferenceText{}, false
}

// fileCatalog is the TOML layout of an extra catalog file.
type fileCatalog struct {
	Texts []fileText `toml:"text"`
}

type fileText struct {
	ID         int    `toml:"id"`
	Difficulty string `toml:"difficulty"`
	Body       string `toml:"body"`
	Audio      string `toml:"audio"`
}

// LoadFile reads extra texts from a TOML file of [[text]] tables.
// A missing file yields no texts.
func LoadFile(path string) ([]model.ReferenceText, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	var fc fileCatalog
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	texts := make([]model.ReferenceText, 0, len(fc.Texts))
	var errs []error
	for i, ft := range fc.Texts {
		d, err := model.ParseDifficulty(ft.Difficulty)
		if err != nil {
			errs = append(errs, fmt.Errorf("text %d: %w", i+1, err))
			continue
		}
		body := strings.Join(strings.Fields(ft.Body), " ")
		if body == "" {
			errs = append(errs, fmt.Errorf("text %d: body is empty", i+1))
			continue
		}
		if ft.ID <= 0 {
			errs = append(errs, fmt.Errorf("text %d: id must be positive", i+1))
			continue
		}
		texts = append(texts, model.ReferenceText{ID: ft.ID, Difficulty: d, Body: body, AudioCue: ft.Audio})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return texts, nil
}
