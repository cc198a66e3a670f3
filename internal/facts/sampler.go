package facts

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/dooshek/factreader/internal/logger"
)

// Rand is the source of random integers used by the Sampler.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Sampler picks distinct non-empty lines from a fact source at random
// without holding the source in memory.
type Sampler struct {
	rng Rand
}

// pick is a selected line together with its position in the source
type pick struct {
	index int
	text  string
}

// NewSampler creates a Sampler. A nil rng uses the math/rand/v2 global source.
func NewSampler(rng Rand) *Sampler {
	if rng == nil {
		rng = globalRand{}
	}
	return &Sampler{rng: rng}
}

// SampleFile opens path and samples count facts from it.
// The file is closed before SampleFile returns.
func (s *Sampler) SampleFile(path string, count int) ([]string, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	defer f.Close()

	return s.Sample(f, count)
}

// Sample returns count distinct non-empty lines of src, trimmed, in the order
// they appear in src.
//
// The source is counted once, then streamed once up to the last selected line.
// A selected line that turns out to be blank is replaced by a random unselected
// line further down. If the end of the source is reached before enough lines
// were found, one more pass fills the gap from the remaining non-empty lines.
func (s *Sampler) Sample(src io.ReadSeeker, count int) ([]string, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}

	c, err := CountLines(src)
	if err != nil {
		return nil, err
	}
	if c.Total == 0 {
		return nil, ErrEmptySource
	}
	if c.NonEmpty < count {
		return nil, fmt.Errorf("%w: requested %d, source has %d", ErrInsufficientData, count, c.NonEmpty)
	}

	if err := rewind(src); err != nil {
		return nil, err
	}

	targets := s.distinct(c.Total, count)
	logger.Debugf("Sampling %d of %d lines, target lines: %v", count, c.Total, targets)

	picks, err := s.stream(src, c.Total, targets)
	if err != nil {
		return nil, err
	}

	if missing := count - len(picks); missing > 0 {
		logger.Debugf("Ran out of lines after blank targets, filling %d from a second pass", missing)

		if err := rewind(src); err != nil {
			return nil, err
		}
		extra, err := s.compact(src, picks, missing, c.NonEmpty)
		if err != nil {
			return nil, err
		}
		picks = append(picks, extra...)
		slices.SortFunc(picks, func(a, b pick) int { return a.index - b.index })
	}

	result := make([]string, len(picks))
	for i, p := range picks {
		result[i] = p.text
	}
	return result, nil
}

// stream walks src once, collecting the lines at the target indices.
// It returns early once every target is resolved.
func (s *Sampler) stream(src io.Reader, total int, targets []int) ([]pick, error) {
	picks := make([]pick, 0, len(targets))

	err := forEachLine(src, func(index int, line string) bool {
		if len(targets) == 0 || targets[0] != index {
			return true
		}
		targets = targets[1:]

		if text := strings.TrimSpace(line); text != "" {
			picks = append(picks, pick{index: index, text: text})
		} else if next, ok := s.replacement(index, total, targets); ok {
			logger.Debugf("Line %d is blank, trying line %d instead", index, next)
			targets = insertSorted(targets, next)
		}

		return len(targets) > 0
	})
	if err != nil {
		return nil, err
	}

	return picks, nil
}

// replacement draws a random index from (index, total) that is not already
// targeted. pending must be sorted and hold only indices greater than index.
func (s *Sampler) replacement(index, total int, pending []int) (int, bool) {
	free := total - index - 1 - len(pending)
	if free <= 0 {
		return 0, false
	}

	candidate := index + 1 + s.rng.IntN(free)
	for _, t := range pending {
		if t > candidate {
			break
		}
		candidate++
	}
	return candidate, true
}

// compact picks missing more lines uniformly among the non-empty lines that
// were not picked yet.
func (s *Sampler) compact(src io.Reader, picked []pick, missing, nonEmpty int) ([]pick, error) {
	taken := make(map[int]struct{}, len(picked))
	for _, p := range picked {
		taken[p.index] = struct{}{}
	}

	remaining := nonEmpty - len(picked)
	if remaining < missing {
		return nil, fmt.Errorf("%w: source changed while sampling", ErrInsufficientData)
	}
	ranks := s.distinct(remaining, missing)
	extra := make([]pick, 0, missing)
	rank := 0

	err := forEachLine(src, func(index int, line string) bool {
		if _, ok := taken[index]; ok {
			return true
		}
		text := strings.TrimSpace(line)
		if text == "" {
			return true
		}
		if rank == ranks[0] {
			extra = append(extra, pick{index: index, text: text})
			ranks = ranks[1:]
		}
		rank++
		return len(ranks) > 0
	})
	if err != nil {
		return nil, err
	}

	if len(ranks) > 0 {
		return nil, fmt.Errorf("%w: source changed while sampling", ErrInsufficientData)
	}
	return extra, nil
}

// distinct draws k distinct integers from [0, n) in ascending order
// using Floyd's algorithm.
func (s *Sampler) distinct(n, k int) []int {
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		v := s.rng.IntN(j + 1)
		if _, dup := chosen[v]; dup {
			v = j
		}
		chosen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func insertSorted(values []int, v int) []int {
	i, _ := slices.BinarySearch(values, v)
	return slices.Insert(values, i, v)
}

func validateCount(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInsufficientData, count)
	}
	return nil
}

func rewind(src io.Seeker) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind fact source: %w", err)
	}
	return nil
}
