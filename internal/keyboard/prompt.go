package keyboard

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/types"
)

// ErrSelectionCancelled is returned when the user presses a key that is not 1-9
var ErrSelectionCancelled = errors.New("selection cancelled")

// CountPrompt asks the user how many facts to read
type CountPrompt interface {
	// ReadCount blocks until a key decides the count (1-9) or cancels the selection
	ReadCount(ctx context.Context) (int, error)
}

// NewPrompt returns the prompt for backend: "stdin", "evdev" or "auto"
func NewPrompt(backend string) (CountPrompt, error) {
	switch backend {
	case types.InputStdin, "":
		return NewStdinPrompt(os.Stdin), nil
	case types.InputEvdev:
		return NewEvdevPrompt("")
	case types.InputAuto:
		prompt, err := NewEvdevPrompt("")
		if err != nil {
			logger.Debugf("Keyboard device unavailable, reading from stdin: %v", err)
			return NewStdinPrompt(os.Stdin), nil
		}
		return prompt, nil
	default:
		return nil, fmt.Errorf("unsupported input backend: %s (supported: stdin, evdev, auto)", backend)
	}
}

// digitForRune returns the count selected by a typed character
func digitForRune(r rune) (int, bool) {
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}
