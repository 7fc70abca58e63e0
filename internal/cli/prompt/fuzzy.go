package prompt

import (
	"slices"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/packprefs/internal/errors"
)

type findFunc func(slice any, itemFunc func(i int) string, opts ...fuzzyfinder.Option) (int, error)

type findMultiFunc func(slice any, itemFunc func(i int) string, opts ...fuzzyfinder.Option) ([]int, error)

// Fuzzy is a full-screen fuzzy finder Chooser. It needs a terminal.
type Fuzzy struct {
	find      findFunc
	findMulti findMultiFunc
}

// NewFuzzy creates a Fuzzy chooser.
func NewFuzzy() *Fuzzy {
	return &Fuzzy{
		find:      fuzzyfinder.Find,
		findMulti: fuzzyfinder.FindMulti,
	}
}

func (f *Fuzzy) options(title string, items []Item) []fuzzyfinder.Option {
	return []fuzzyfinder.Option{
		fuzzyfinder.WithHeader(title),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return items[i].Label + "\n\n" + items[i].Detail
		}),
	}
}

// ChooseOne opens the finder for a single item.
func (f *Fuzzy) ChooseOne(title string, items []Item) (int, error) {
	if len(items) == 0 {
		return -1, ErrNoItems
	}

	idx, err := f.find(items, func(i int) string { return items[i].Label }, f.options(title, items)...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return -1, ErrSelectionCancelled
		}
		return -1, errors.Wrap(err, "fuzzy finder failed")
	}
	return idx, nil
}

// ChooseMany opens the finder with multi-select (Tab to mark).
func (f *Fuzzy) ChooseMany(title string, items []Item) ([]int, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	idxs, err := f.findMulti(items, func(i int) string { return items[i].Label }, f.options(title, items)...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "fuzzy finder failed")
	}

	slices.Sort(idxs)
	return idxs, nil
}
