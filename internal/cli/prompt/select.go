// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/packprefs/internal/errors"
)

// Sentinel errors for selection.
var (
	ErrNoItems            = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Item is one selectable entry.
type Item struct {
	// Label is the single-line text shown in the list.
	Label string
	// Detail is extra text shown by choosers that have room for it.
	Detail string
}

// Chooser picks items interactively.
type Chooser interface {
	// ChooseOne returns the index of the chosen item.
	ChooseOne(title string, items []Item) (int, error)
	// ChooseMany returns the ascending indexes of the chosen items.
	ChooseMany(title string, items []Item) ([]int, error)
}

// Selector handles numbered selection prompts on a line-based terminal.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

func (s *Selector) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading selection")
	}
	return strings.TrimSpace(input), nil
}

func (s *Selector) list(title string, items []Item) {
	fmt.Fprintf(s.writer, "%s:\n", title)
	for i, item := range items {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, item.Label)
	}
}

// ChooseOne prompts the user to choose one item.
//
// Returns:
//   - ErrNoItems if the list is empty
//   - 0 if only one item exists (auto-selects without prompting)
//   - The selected index based on user input; empty input selects the first
//   - ErrInvalidSelection if the selection is not a number in range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) ChooseOne(title string, items []Item) (int, error) {
	if len(items) == 0 {
		return -1, ErrNoItems
	}
	if len(items) == 1 {
		return 0, nil
	}

	s.list(title, items)
	fmt.Fprintf(s.writer, "Select [1]: ")

	input, err := s.readLine()
	if err != nil {
		return -1, err
	}
	if input == "" {
		return 0, nil
	}

	n, err := parseIndex(input, len(items))
	if err != nil {
		return -1, err
	}
	return n, nil
}

// ChooseMany prompts the user to choose any number of items.
// Input is a list of numbers separated by commas or spaces, ranges such as
// "2-4", or "all". Empty input selects nothing.
func (s *Selector) ChooseMany(title string, items []Item) ([]int, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	s.list(title, items)
	fmt.Fprintf(s.writer, "Select (e.g. 1,3 or 2-4 or all): ")

	input, err := s.readLine()
	if err != nil {
		return nil, err
	}
	return ParseSelection(input, len(items))
}

// ParseSelection parses a multi-selection against n items and returns sorted,
// distinct zero-based indexes.
func ParseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if strings.EqualFold(input, "all") || input == "*" {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	var out []int
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, field := range fields {
		lo, hi, isRange := strings.Cut(field, "-")
		if !isRange {
			i, err := parseIndex(field, n)
			if err != nil {
				return nil, err
			}
			out = append(out, i)
			continue
		}

		from, err := parseIndex(lo, n)
		if err != nil {
			return nil, err
		}
		to, err := parseIndex(hi, n)
		if err != nil {
			return nil, err
		}
		if from > to {
			return nil, errors.Wrapf(ErrInvalidSelection, "range %q is reversed", field)
		}
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}

// parseIndex converts a 1-based selection to a 0-based index.
func parseIndex(input string, n int) (int, error) {
	selection, err := strconv.Atoi(input)
	if err != nil {
		return -1, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > n {
		return -1, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, n)
	}
	return selection - 1, nil
}

// Confirm asks a yes/no question. Empty input returns def.
func (s *Selector) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(s.writer, "%s [%s]: ", question, hint)

	input, err := s.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(input) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, errors.Wrapf(ErrInvalidSelection, "%q is not yes or no", input)
}
