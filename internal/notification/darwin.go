package notification

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/dooshek/factreader/internal/logger"
)

type darwinNotifier struct{}

func newDarwinNotifier() platformNotifier {
	return &darwinNotifier{}
}

func (n *darwinNotifier) send(title, message string) error {
	logger.Debugf("Sending macOS notification: %s - %s", title, message)
	script := fmt.Sprintf(`display notification %s with title %s`, strconv.Quote(message), strconv.Quote(title))
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("failed to send macOS notification: %w", err)
	}
	return nil
}
