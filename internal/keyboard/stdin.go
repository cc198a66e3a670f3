package keyboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dooshek/factreader/internal/logger"
)

// StdinPrompt reads the selection from a line of text
type StdinPrompt struct {
	reader *bufio.Reader
}

func NewStdinPrompt(r io.Reader) *StdinPrompt {
	return &StdinPrompt{reader: bufio.NewReader(r)}
}

type lineResult struct {
	line string
	err  error
}

// ReadCount reads one line; its first non-space character decides the count
func (p *StdinPrompt) ReadCount(ctx context.Context) (int, error) {
	result := make(chan lineResult, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		result <- lineResult{line: line, err: err}
	}()

	var res lineResult
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res = <-result:
	}

	if res.err != nil && !errors.Is(res.err, io.EOF) {
		return 0, fmt.Errorf("failed to read selection: %w", res.err)
	}

	answer := strings.TrimSpace(res.line)
	first, _ := utf8.DecodeRuneInString(answer)
	n, ok := digitForRune(first)
	if !ok {
		logger.Debugf("Selection %q cancelled", answer)
		return 0, ErrSelectionCancelled
	}
	return n, nil
}
