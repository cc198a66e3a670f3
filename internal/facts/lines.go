package facts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Count holds the result of a counting pass over a fact source
type Count struct {
	Total    int // all lines, blank ones included
	NonEmpty int // lines with at least one non-space character
}

// CountLines reads r once and counts its lines.
// A trailing line without a newline is counted; an empty reader has zero lines.
func CountLines(r io.Reader) (Count, error) {
	var c Count
	err := forEachLine(r, func(_ int, line string) bool {
		c.Total++
		if !isBlank(line) {
			c.NonEmpty++
		}
		return true
	})
	if err != nil {
		return Count{}, err
	}
	return c, nil
}

const utf8BOM = "\ufeff"

// forEachLine calls fn for every line of r with its zero-based index.
// A leading UTF-8 byte order mark is dropped from the first line.
// Reading stops early when fn returns false.
func forEachLine(r io.Reader, fn func(index int, line string) bool) error {
	br := bufio.NewReader(r)
	for index := 0; ; index++ {
		line, err := br.ReadString('\n')
		if index == 0 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		if len(line) > 0 && !fn(index, line) {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read line %d: %w", index, err)
		}
	}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
