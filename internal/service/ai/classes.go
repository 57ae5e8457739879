package ai

import (
	"fmt"
	"strings"
)

// ClassID returns the index of target in the model's class names.
func ClassID(names []string, target string) (int, error) {
	for i, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), target) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q not in %v", ErrClassNotFound, target, names)
}
