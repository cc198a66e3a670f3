package keyboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarinX/keylogger"
	"github.com/dooshek/factreader/internal/logger"
)

const permissionHint = "Cannot access keyboard device.\n" +
	"Solution: \n" +
	"1. Add yourself to the input group: sudo usermod -aG input $USER \n" +
	"2. Log out and log back in (or restart your system) \n" +
	"3. Run the program again \n" +
	"Alternatively, use the stdin input backend (--input stdin)."

// EvdevPrompt reads a single key press from a keyboard input device
type EvdevPrompt struct {
	keyboard *keylogger.KeyLogger
}

// NewEvdevPrompt opens device, or the first keyboard found when device is empty
func NewEvdevPrompt(device string) (*EvdevPrompt, error) {
	if device == "" {
		keyboards := keylogger.FindAllKeyboardDevices()
		if len(keyboards) == 0 {
			return nil, fmt.Errorf("no keyboard devices found")
		}
		device = keyboards[0]
	}

	kbd, err := keylogger.New(device)
	if err != nil {
		if strings.Contains(err.Error(), "permission denied") {
			return nil, fmt.Errorf("error initializing keylogger: %w\n%s", err, permissionHint)
		}
		return nil, fmt.Errorf("error initializing keylogger: %w", err)
	}

	logger.Debugf("Reading selection from keyboard device %s", device)
	return &EvdevPrompt{keyboard: kbd}, nil
}

// ReadCount waits for the next key press. The device is closed afterwards.
func (p *EvdevPrompt) ReadCount(ctx context.Context) (int, error) {
	defer p.keyboard.Close()
	return countFromEvents(ctx, p.keyboard.Read())
}

// countFromEvents decides the count from the first relevant key press
func countFromEvents(ctx context.Context, events <-chan keylogger.InputEvent) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case e, ok := <-events:
			if !ok {
				return 0, fmt.Errorf("keyboard device closed")
			}
			if e.Type != keylogger.EvKey || !e.KeyPress() {
				continue
			}
			if ignoredKeys[e.Code] {
				continue
			}
			if n, ok := digitForKey(e.Code); ok {
				return n, nil
			}
			logger.Debugf("Key %s cancelled the selection", e.KeyString())
			return 0, ErrSelectionCancelled
		}
	}
}
