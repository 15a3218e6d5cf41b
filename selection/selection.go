package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/vlmchat/catalog"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("please enter a selection")

// IndexOutOfRangeError aborts the whole selection, even if other indices
// were valid.
type IndexOutOfRangeError struct {
	Index int
	Max   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("invalid index: %d", e.Index)
}

type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("could not find image matching: %s", e.Query)
}

// Parse resolves user input against the catalog. Input is one of "all",
// a comma separated list of 1-based indices, or a case-insensitive
// substring of the file name.
func Parse(images []catalog.Image, input string) ([]catalog.Image, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmpty
	}
	if strings.EqualFold(input, "all") {
		return images, nil
	}
	if indices, ok := parseIndices(input); ok {
		selected := make([]catalog.Image, 0, len(indices))
		for _, idx := range indices {
			if idx < 1 || idx > len(images) {
				return nil, &IndexOutOfRangeError{Index: idx, Max: len(images)}
			}
			selected = append(selected, images[idx-1])
		}
		return selected, nil
	}
	return byName(images, input)
}

func parseIndices(input string) (indices []int, ok bool) {
	for _, s := range strings.Split(input, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		indices = append(indices, idx)
	}
	return indices, true
}

func byName(images []catalog.Image, query string) (matches []catalog.Image, err error) {
	q := strings.ToLower(query)
	for _, img := range images {
		if strings.Contains(strings.ToLower(img.Name), q) {
			matches = append(matches, img)
		}
	}
	if len(matches) == 0 {
		return nil, &NoMatchError{Query: query}
	}
	return matches, nil
}
