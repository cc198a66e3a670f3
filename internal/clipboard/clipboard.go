package clipboard

import (
	"fmt"
	"strings"

	"github.com/dooshek/factreader/internal/logger"
	"github.com/go-vgo/robotgo"
)

// writeAll is replaced in tests
var writeAll = robotgo.WriteAll

// CopyToClipboard copies the given text to the clipboard.
func CopyToClipboard(text string) error {
	logger.Debugf("clipboard: CopyToClipboard: %s", text)

	if err := writeAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// CopyFacts copies facts to the clipboard, one per line
func CopyFacts(facts []string) error {
	if len(facts) == 0 {
		return nil
	}
	return CopyToClipboard(strings.Join(facts, "\n"))
}
