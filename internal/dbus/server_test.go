package dbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	release chan struct{}
	done    chan struct{}
	err     error
}

func newBlockingRunner(err error) *blockingRunner {
	return &blockingRunner{release: make(chan struct{}), done: make(chan struct{}), err: err}
}

func (r *blockingRunner) Run(ctx context.Context) ([]string, error) {
	defer close(r.done)
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []string{"fact"}, r.err
}

func waitIdle(t *testing.T, s *Server) {
	t.Helper()
	require.Eventually(t, func() bool {
		reading, _ := s.GetStatus()
		return !reading
	}, time.Second, 5*time.Millisecond)
}

func TestReadFactsRunsSession(t *testing.T) {
	runner := newBlockingRunner(nil)
	var requested int
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		requested = count
		return runner, nil
	}, nil)

	require.Nil(t, s.ReadFacts(3))
	assert.Equal(t, 3, requested)

	reading, dbusErr := s.GetStatus()
	require.Nil(t, dbusErr)
	assert.True(t, reading)

	close(runner.release)
	<-runner.done
	waitIdle(t, s)
}

func TestReadFactsRejectsConcurrentReading(t *testing.T) {
	runner := newBlockingRunner(nil)
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		return runner, nil
	}, nil)

	require.Nil(t, s.ReadFacts(1))
	dbusErr := s.ReadFacts(1)
	require.NotNil(t, dbusErr)
	assert.Contains(t, dbusErr.Error(), ErrBusy.Error())

	close(runner.release)
	waitIdle(t, s)
}

func TestReadFactsInvalidCount(t *testing.T) {
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		t.Fatal("session must not be created")
		return nil, nil
	}, nil)

	assert.NotNil(t, s.ReadFacts(0))
	assert.NotNil(t, s.ReadFacts(-2))
}

func TestReadFactsFactoryError(t *testing.T) {
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		return nil, errors.New("no speech provider")
	}, nil)

	assert.NotNil(t, s.ReadFacts(2))
	reading, _ := s.GetStatus()
	assert.False(t, reading)
}

func TestFailedSessionResetsStatus(t *testing.T) {
	runner := newBlockingRunner(errors.New("speech unavailable"))
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		return runner, nil
	}, nil)

	require.Nil(t, s.ReadFacts(2))
	close(runner.release)
	waitIdle(t, s)
}

func TestStopCancelsSession(t *testing.T) {
	runner := newBlockingRunner(nil)
	s := NewServer(context.Background(), func(count int) (Runner, error) {
		return runner, nil
	}, nil)

	require.Nil(t, s.ReadFacts(2))
	s.Stop()

	select {
	case <-runner.done:
	default:
		t.Fatal("session still running after Stop")
	}
	s.Wait()
}

func TestGetStats(t *testing.T) {
	s := NewServer(context.Background(), nil, func() (string, error) {
		return `{"sessions":2}`, nil
	})
	data, dbusErr := s.GetStats()
	require.Nil(t, dbusErr)
	assert.Equal(t, `{"sessions":2}`, data)

	s = NewServer(context.Background(), nil, func() (string, error) {
		return "", errors.New("disk full")
	})
	_, dbusErr = s.GetStats()
	assert.NotNil(t, dbusErr)
}
