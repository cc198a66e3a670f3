package facts

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns queued values and fails the test on any unexpected draw
type scriptedRand struct {
	t      *testing.T
	values []int
	calls  int
}

func (r *scriptedRand) IntN(n int) int {
	r.t.Helper()
	require.NotEmpty(r.t, r.values, "unexpected random draw IntN(%d)", n)
	v := r.values[0]
	r.values = r.values[1:]
	r.calls++
	require.Less(r.t, v, n, "scripted value out of range for IntN(%d)", n)
	return v
}

func source(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestSampleScriptedTargets(t *testing.T) {
	// Floyd draws: IntN(3)=0, IntN(4)=2, IntN(5)=4 -> targets {0,2,4}
	rng := &scriptedRand{t: t, values: []int{0, 2, 4}}
	got, err := NewSampler(rng).Sample(source("A", "B", "C", "D", "E"), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "E"}, got)
	assert.Empty(t, rng.values)
}

func TestSampleReplacesBlankTarget(t *testing.T) {
	// targets {1,3}; line 1 is blank, free lines after it are {2,4}, draw 1 -> 4
	rng := &scriptedRand{t: t, values: []int{1, 3, 1}}
	got, err := NewSampler(rng).Sample(source("A", "", "C", "D", "E"), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"D", "E"}, got)
}

func TestSampleReplacementPrecedingExistingTarget(t *testing.T) {
	// same targets, replacement draw 0 -> line 2, which sorts before line 3
	rng := &scriptedRand{t: t, values: []int{1, 3, 0}}
	got, err := NewSampler(rng).Sample(source("A", "", "C", "D", "E"), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, got)
}

func TestSampleFallsBackWhenTailIsBlank(t *testing.T) {
	// target line 2 (blank) -> replacement line 3 (blank) -> no room left.
	// The second pass ranks the non-empty lines {A,B} and draws rank 1.
	rng := &scriptedRand{t: t, values: []int{2, 0, 1}}
	got, err := NewSampler(rng).Sample(source("A", "B", "", ""), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got)
}

func TestSampleFallbackKeepsOrder(t *testing.T) {
	// targets {0,3}: line 0 picked, line 3 blank with nothing after it.
	// Remaining candidates {B,C}, rank 0 -> B, merged in source order.
	rng := &scriptedRand{t: t, values: []int{0, 3, 0}}
	got, err := NewSampler(rng).Sample(source("A", "B", "C", ""), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestSampleEmptySourceDrawsNothing(t *testing.T) {
	rng := &scriptedRand{t: t}
	_, err := NewSampler(rng).Sample(strings.NewReader(""), 1)

	require.ErrorIs(t, err, ErrEmptySource)
	assert.Zero(t, rng.calls)
}

func TestSampleRejectsBadCounts(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		count int
	}{
		{"zero", "A\nB\n", 0},
		{"negative", "A\nB\n", -2},
		{"more than lines", "A\nB\n", 3},
		{"more than non-empty", "A\n\n\nB\n", 3},
		{"only blanks", "\n  \n\t\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &scriptedRand{t: t}
			_, err := NewSampler(rng).Sample(strings.NewReader(tt.src), tt.count)
			require.ErrorIs(t, err, ErrInsufficientData)
			assert.Zero(t, rng.calls)
		})
	}
}

func TestSampleNeverReturnsBlankLine(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "fact " + strconv.Itoa(i)
	}
	lines[6] = ""
	sampler := NewSampler(rand.New(rand.NewPCG(7, 11)))

	for i := 0; i < 500; i++ {
		got, err := sampler.Sample(source(lines...), 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.NotContains(t, got, "")
	}
}

func TestSampleProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sampler := NewSampler(rng)

	for iter := 0; iter < 300; iter++ {
		total := 2 + rng.IntN(40)
		lines := make([]string, total)
		nonEmpty := 0
		for i := range lines {
			if rng.IntN(4) == 0 {
				continue
			}
			lines[i] = fmt.Sprintf("%03d", i)
			nonEmpty++
		}
		if nonEmpty == 0 {
			continue
		}
		count := 1 + rng.IntN(nonEmpty)

		got, err := sampler.Sample(source(lines...), count)
		require.NoError(t, err, "lines=%q count=%d", lines, count)
		require.Len(t, got, count)

		seen := make(map[string]bool, count)
		prev := -1
		for _, fact := range got {
			assert.False(t, seen[fact], "duplicate %q", fact)
			seen[fact] = true

			pos, err := strconv.Atoi(fact)
			require.NoError(t, err)
			assert.Equal(t, fact, lines[pos])
			assert.Greater(t, pos, prev, "facts out of order: %v", got)
			prev = pos
		}
	}
}

func TestSampleAllLinesReachable(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewPCG(3, 4)))
	seen := map[string]int{}

	for i := 0; i < 400; i++ {
		got, err := sampler.Sample(source("A", "B", "C", "D"), 1)
		require.NoError(t, err)
		seen[got[0]]++
	}

	for _, fact := range []string{"A", "B", "C", "D"} {
		assert.Positive(t, seen[fact], "line %s was never selected", fact)
	}
}

func TestSampleTrimsLineEndings(t *testing.T) {
	rng := &scriptedRand{t: t, values: []int{0, 2}}
	got, err := NewSampler(rng).Sample(strings.NewReader("  one \r\ntwo\r\nthree"), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, got)
}

func TestSampleDropsByteOrderMark(t *testing.T) {
	rng := &scriptedRand{t: t, values: []int{0}}
	got, err := NewSampler(rng).Sample(strings.NewReader("\ufeffA\nB\n"), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)
}

func TestSampleByteOrderMarkOnlyLineIsBlank(t *testing.T) {
	// line 0 holds only the mark, so it is replaced by the single free line 1
	rng := &scriptedRand{t: t, values: []int{0, 0}}
	got, err := NewSampler(rng).Sample(strings.NewReader("\ufeff\nB\n"), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got)
}

// meteredReader counts the bytes handed out since the last Seek and can fail
// once a pass has read past failAt.
type meteredReader struct {
	r        *strings.Reader
	pass     int
	read     int
	failPass int
	failAt   int
	err      error
}

func (m *meteredReader) Read(p []byte) (int, error) {
	if m.err != nil && m.pass == m.failPass && m.read >= m.failAt {
		return 0, m.err
	}
	n, err := m.r.Read(p)
	m.read += n
	return n, err
}

func (m *meteredReader) Seek(offset int64, whence int) (int64, error) {
	m.pass++
	m.read = 0
	return m.r.Seek(offset, whence)
}

func manyLines(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "fact number %d\n", i)
	}
	return b.String()
}

func TestSampleStopsReadingAfterLastTarget(t *testing.T) {
	text := manyLines(20000)
	src := &meteredReader{r: strings.NewReader(text)}

	// Floyd draws IntN(19999)=0, IntN(20000)=1 -> targets {0,1}
	rng := &scriptedRand{t: t, values: []int{0, 1}}
	got, err := NewSampler(rng).Sample(src, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"fact number 0", "fact number 1"}, got)
	assert.Equal(t, 1, src.pass, "only the counting pass and one streaming pass expected")
	assert.Less(t, src.read, len(text)/10, "streaming pass read %d of %d bytes", src.read, len(text))
}

func TestSampleReadErrorDuringCount(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &meteredReader{r: strings.NewReader(manyLines(2000)), failPass: 0, failAt: 100, err: boom}

	_, err := NewSampler(&scriptedRand{t: t}).Sample(src, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSampleReadErrorWhileStreaming(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &meteredReader{r: strings.NewReader(manyLines(2000)), failPass: 1, failAt: 100, err: boom}

	// targets {1998,1999} lie past the failure point
	rng := &scriptedRand{t: t, values: []int{1998, 1999}}
	got, err := NewSampler(rng).Sample(src, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestSampleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\nB\nC\n"), 0o644))

	rng := &scriptedRand{t: t, values: []int{1, 2}}
	got, err := NewSampler(rng).SampleFile(path, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)
}

func TestSampleFileMissing(t *testing.T) {
	_, err := NewSampler(nil).SampleFile(filepath.Join(t.TempDir(), "nope.txt"), 1)

	require.ErrorIs(t, err, ErrSourceNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Count
	}{
		{"empty", "", Count{}},
		{"single newline", "\n", Count{Total: 1}},
		{"no trailing newline", "a\nb", Count{Total: 2, NonEmpty: 2}},
		{"blanks", "a\n\n  \nb\n", Count{Total: 4, NonEmpty: 2}},
		{"crlf", "a\r\n\r\nb\r\n", Count{Total: 3, NonEmpty: 2}},
		{"byte order mark", "\ufeffa\nb\n", Count{Total: 2, NonEmpty: 2}},
		{"byte order mark only", "\ufeff\nb\n", Count{Total: 2, NonEmpty: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountLines(strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountLinesIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb\nc"), 0o644))

	count := func() Count {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		c, err := CountLines(f)
		require.NoError(t, err)
		return c
	}

	assert.Equal(t, count(), count())
}
